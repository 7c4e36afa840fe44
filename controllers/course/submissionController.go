package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"lms/database"
	"lms/grading"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmitTest accepts a student's answer sheet for a test, applies the
// test's configured grading strategy and persists the submission
func SubmitTest(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	testID := c.Locals("testID").(int)
	answers := c.Locals("validatedAnswers").([]grading.AnswerInput)

	var submission *courseModels.StudentSubmission
	var failure *Failure
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, failure, err = submitTest(tx, userID, uint(testID), answers)
		return err
	})
	if err != nil {
		log.Printf("[SUBMISSION] submit failed for user %d test %d: %v", userID, testID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit test!", nil)
	}
	if failure != nil {
		return failureResponse(c, failure)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Test submitted successfully!", fiber.Map{
		"submission_id": submission.ID,
		"status":        submission.Status,
		"score":         submission.Score,
	})
}

// submitTest runs the whole submit operation on one transaction handle
// so the submission row and its answers commit atomically. No reader can
// ever observe GRADED with a null score or PENDING_REVIEW with one.
func submitTest(tx *gorm.DB, userID, testID uint, answers []grading.AnswerInput) (*courseModels.StudentSubmission, *Failure, error) {
	var test courseModels.Test
	if err := tx.Where("id = ? AND is_deleted = ? AND is_published = ?", testID, false, true).First(&test).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(FailureNotFound, "Test not found!"), nil
		}
		return nil, nil, err
	}

	var enrollment courseModels.Enrollment
	if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, test.CourseID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(FailureAuthorization, "User not enrolled in this course!"), nil
		}
		return nil, nil, err
	}

	var questions []courseModels.Question
	if err := tx.Where("test_id = ? AND is_deleted = ?", testID, false).Order("position asc").Find(&questions).Error; err != nil {
		return nil, nil, err
	}

	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	answered := make(map[uint]bool, len(answers))
	for _, a := range answers {
		if !known[a.QuestionID] {
			return nil, failWith(FailureValidation, "Answer references a question outside this test!",
				map[string]interface{}{"question_id": a.QuestionID}), nil
		}
		// one answer per question, a duplicate entry would shadow the first
		if answered[a.QuestionID] {
			return nil, failWith(FailureValidation, "Duplicate answer for a question!",
				map[string]interface{}{"question_id": a.QuestionID}), nil
		}
		answered[a.QuestionID] = true
	}

	sheet := make([]grading.QuestionWithOptions, len(questions))
	for i, q := range questions {
		var options []courseModels.QuestionOption
		if err := tx.Where("question_id = ? AND is_deleted = ?", q.ID, false).Order("order_index asc").Find(&options).Error; err != nil {
			return nil, nil, err
		}
		sheet[i] = grading.QuestionWithOptions{Question: q, Options: options}
	}

	strategy, err := grading.Resolve(test.StrategyType)
	if err != nil {
		// misconfigured test row, fatal and not retryable
		return nil, nil, err
	}

	outcome, err := strategy.Grade(sheet, answers)
	if err != nil {
		if errors.Is(err, grading.ErrNoQuestions) {
			return nil, fail(FailurePrecondition, "Test has no questions to grade!"), nil
		}
		return nil, nil, err
	}

	submission := courseModels.StudentSubmission{
		UserID:      userID,
		TestID:      testID,
		Status:      outcome.Status,
		Score:       outcome.Score,
		SubmittedAt: time.Now(),
	}
	if err := tx.Create(&submission).Error; err != nil {
		return nil, nil, err
	}

	for i, a := range answers {
		selected, _ := json.Marshal(a.SelectedOptionIDs)
		answer := courseModels.StudentAnswer{
			SubmissionID:    submission.ID,
			QuestionID:      a.QuestionID,
			AnswerText:      a.AnswerText,
			SelectedOptions: datatypes.JSON(selected),
			Position:        i,
		}
		if err := tx.Create(&answer).Error; err != nil {
			return nil, nil, err
		}
	}

	return &submission, nil, nil
}

// AssignGrade lets a grader score a submission that is pending manual
// review. On success a grade notification is published fire-and-forget.
func AssignGrade(c *fiber.Ctx) error {
	graderID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	submissionID := c.Locals("submissionID").(int)
	score := c.Locals("validatedScore").(float64)

	var submission *courseModels.StudentSubmission
	var failure *Failure
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, failure, err = assignGrade(tx, uint(submissionID), score)
		return err
	})
	if err != nil {
		log.Printf("[SUBMISSION] grade assignment by user %d on submission %d failed: %v", graderID, submissionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to assign grade!", nil)
	}
	if failure != nil {
		return failureResponse(c, failure)
	}

	// Notification failure must never roll back the committed grade
	notifyGraded(submission)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Grade assigned successfully!", fiber.Map{
		"submission_id": submission.ID,
		"status":        submission.Status,
		"score":         submission.Score,
	})
}

// assignGrade performs the PENDING_REVIEW -> GRADED transition. The
// conditional update is the concurrency guard: a second grader racing on
// the same submission affects zero rows and gets a Conflict, the score
// written first is never overwritten.
func assignGrade(tx *gorm.DB, submissionID uint, score float64) (*courseModels.StudentSubmission, *Failure, error) {
	if score < 0 || score > 100 {
		return nil, fail(FailureValidation, "Score must be between 0 and 100!"), nil
	}

	var submission courseModels.StudentSubmission
	if err := tx.Where("id = ? AND is_deleted = ?", submissionID, false).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(FailureNotFound, "Submission not found!"), nil
		}
		return nil, nil, err
	}

	rounded := grading.Round2(score)
	result := tx.Model(&courseModels.StudentSubmission{}).
		Where("id = ? AND status = ?", submissionID, courseModels.StatusPendingReview).
		Updates(map[string]interface{}{"status": courseModels.StatusGraded, "score": rounded})
	if result.Error != nil {
		return nil, nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fail(FailureConflict, "Submission is already graded!"), nil
	}

	submission.Status = courseModels.StatusGraded
	submission.Score = &rounded
	return &submission, nil, nil
}

// notifyGraded publishes the grade event to the notification service
func notifyGraded(submission *courseModels.StudentSubmission) {
	db := database.Database.Db

	var test courseModels.Test
	if err := db.Where("id = ?", submission.TestID).First(&test).Error; err != nil {
		log.Printf("[SUBMISSION] skipping grade notification, test %d not found: %v", submission.TestID, err)
		return
	}

	utils.PublishGradeNotification(submission.UserID, submission.TestID, test.Title, *submission.Score)
}

// GetPendingSubmissions lists submissions awaiting manual review
func GetPendingSubmissions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var pending []courseModels.StudentSubmission
	if err := database.Database.Db.
		Where("status = ? AND is_deleted = ?", courseModels.StatusPendingReview, false).
		Order("submitted_at asc").
		Preload("Answers").
		Find(&pending).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch pending submissions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending submissions fetched successfully!", fiber.Map{
		"submissions": pending,
		"total":       len(pending),
	})
}

// GetSubmission returns one submission with its answers, owner only
func GetSubmission(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	submissionID := c.Locals("submissionID").(int)

	var submission courseModels.StudentSubmission
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", submissionID, false).Preload("Answers").First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	if submission.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Submission belongs to another student!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully!", submission)
}
