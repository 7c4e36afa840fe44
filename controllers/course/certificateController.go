package controllers

import (
	"errors"
	"fmt"
	"log"
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GenerateCertificate issues a certificate from one explicitly claimed
// graded submission. Repeating the request returns the existing
// certificate instead of failing or duplicating.
func GenerateCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	submissionID := c.Locals("submissionID").(int)

	var certificate *courseModels.Certificate
	var created bool
	var failure *Failure
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var err error
		certificate, created, failure, err = issueCertificateForSubmission(tx, uint(submissionID), userID)
		return err
	})
	if err != nil {
		log.Printf("[CERTIFICATE] issue failed for user %d submission %d: %v", userID, submissionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate certificate!", nil)
	}
	if failure != nil {
		return failureResponse(c, failure)
	}

	if created {
		sendCertificateEmail(userID, certificate)
	}

	return certificateResponse(c, certificate, created)
}

// GenerateCourseCertificate issues a certificate for a whole course once
// every test has a qualifying submission and all lessons are complete
func GenerateCourseCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var certificate *courseModels.Certificate
	var created bool
	var failure *Failure
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var err error
		certificate, created, failure, err = issueCertificateForCourse(tx, uint(courseID), userID)
		return err
	})
	if err != nil {
		log.Printf("[CERTIFICATE] course issue failed for user %d course %d: %v", userID, courseID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate certificate!", nil)
	}
	if failure != nil {
		return failureResponse(c, failure)
	}

	if created {
		sendCertificateEmail(userID, certificate)
	}

	return certificateResponse(c, certificate, created)
}

func certificateResponse(c *fiber.Ctx, certificate *courseModels.Certificate, created bool) error {
	status := fiber.StatusOK
	message := "Certificate already issued!"
	if created {
		status = fiber.StatusCreated
		message = "Certificate issued successfully!"
	}
	return middleware.JsonResponse(c, status, true, message, fiber.Map{
		"certificate_id":       certificate.ID,
		"certificate_number":   certificate.CertificateNumber,
		"issued_at":            certificate.IssuedAt,
		"source_submission_id": certificate.SubmissionID,
		"score":                certificate.Score,
	})
}

// issueCertificateForSubmission validates the claimed submission
// strictly: it must exist, belong to the claiming student, be graded,
// meet the test's passing score, and the course's lessons must all be
// complete.
func issueCertificateForSubmission(tx *gorm.DB, submissionID, userID uint) (*courseModels.Certificate, bool, *Failure, error) {
	var submission courseModels.StudentSubmission
	if err := tx.Where("id = ? AND is_deleted = ?", submissionID, false).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fail(FailureNotFound, "Submission not found!"), nil
		}
		return nil, false, nil, err
	}

	if submission.UserID != userID {
		return nil, false, fail(FailureAuthorization, "Submission belongs to another student!"), nil
	}

	var test courseModels.Test
	if err := tx.Where("id = ? AND is_deleted = ?", submission.TestID, false).First(&test).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fail(FailureNotFound, "Test not found!"), nil
		}
		return nil, false, nil, err
	}

	if submission.Status != courseModels.StatusGraded || submission.Score == nil {
		return nil, false, fail(FailurePrecondition, "Submission has not been graded yet!"), nil
	}

	if *submission.Score < test.PassingScore {
		return nil, false, failWith(FailurePrecondition, "Score below passing threshold!", map[string]interface{}{
			"score":         *submission.Score,
			"passing_score": test.PassingScore,
		}), nil
	}

	if failure, err := requireLessonsComplete(tx, userID, test.CourseID); failure != nil || err != nil {
		return nil, false, failure, err
	}

	return createOrGetCertificate(tx, userID, test.CourseID, submission.ID, *submission.Score)
}

// issueCertificateForCourse checks every test of the course for a
// qualifying submission and picks the best one across the union as the
// certificate source: highest score, most recently submitted on ties.
func issueCertificateForCourse(tx *gorm.DB, courseID, userID uint) (*courseModels.Certificate, bool, *Failure, error) {
	var course courseModels.Course
	if err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fail(FailureNotFound, "Course not found!"), nil
		}
		return nil, false, nil, err
	}

	var enrollment courseModels.Enrollment
	if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fail(FailureAuthorization, "User not enrolled in this course!"), nil
		}
		return nil, false, nil, err
	}

	var tests []courseModels.Test
	if err := tx.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).Find(&tests).Error; err != nil {
		return nil, false, nil, err
	}
	if len(tests) == 0 {
		return nil, false, fail(FailurePrecondition, "Course has no tests to certify!"), nil
	}

	if failure, err := requireLessonsComplete(tx, userID, courseID); failure != nil || err != nil {
		return nil, false, failure, err
	}

	var best *courseModels.StudentSubmission
	var missing []uint
	for _, test := range tests {
		var qualifying courseModels.StudentSubmission
		err := tx.Where("user_id = ? AND test_id = ? AND status = ? AND is_deleted = ? AND score >= ?",
			userID, test.ID, courseModels.StatusGraded, false, test.PassingScore).
			Order("score desc, submitted_at desc").
			First(&qualifying).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				missing = append(missing, test.ID)
				continue
			}
			return nil, false, nil, err
		}
		if best == nil || betterSubmission(&qualifying, best) {
			sub := qualifying
			best = &sub
		}
	}
	if len(missing) > 0 {
		return nil, false, failWith(FailurePrecondition, "Missing qualifying submissions for some tests!", map[string]interface{}{
			"missing_test_ids": missing,
		}), nil
	}

	return createOrGetCertificate(tx, userID, courseID, best.ID, *best.Score)
}

// betterSubmission ranks by score, then by recency of submission
func betterSubmission(a, b *courseModels.StudentSubmission) bool {
	if *a.Score != *b.Score {
		return *a.Score > *b.Score
	}
	return a.SubmittedAt.After(b.SubmittedAt)
}

// requireLessonsComplete gates certification on the accumulated
// progress facts, reporting completed/total counts on failure. A course
// without published lessons passes trivially (0/0).
func requireLessonsComplete(tx *gorm.DB, userID, courseID uint) (*Failure, error) {
	var totalLessons int64
	if err := tx.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Count(&totalLessons).Error; err != nil {
		return nil, err
	}

	var completedLessons int64
	if err := tx.Model(&courseModels.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lesson_completions.user_id = ? AND lesson_completions.course_id = ?", userID, courseID).
		Where("lessons.is_deleted = ? AND lessons.is_published = ?", false, true).
		Distinct("lesson_completions.lesson_id").
		Count(&completedLessons).Error; err != nil {
		return nil, err
	}

	if completedLessons < totalLessons {
		return failWith(FailurePrecondition,
			fmt.Sprintf("Course lessons incomplete: %d/%d completed!", completedLessons, totalLessons),
			map[string]interface{}{
				"completed_lessons": completedLessons,
				"total_lessons":     totalLessons,
			}), nil
	}
	return nil, nil
}

// createOrGetCertificate is the idempotent issuance step. The unique
// index on (user, course) is the durable guarantee; a concurrent
// duplicate request inserts nothing and is answered with the row that
// won the race.
func createOrGetCertificate(tx *gorm.DB, userID, courseID, submissionID uint, score float64) (*courseModels.Certificate, bool, *Failure, error) {
	var existing courseModels.Certificate
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return &existing, false, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil, err
	}

	certificate := courseModels.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		SubmissionID:      submissionID,
		Score:             score,
		CertificateNumber: utils.GenerateCertificateNumber(userID, courseID),
		IssuedAt:          time.Now(),
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&certificate).Error; err != nil {
		return nil, false, nil, err
	}
	if certificate.ID == 0 {
		// lost the race, return the certificate that was created first
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err != nil {
			return nil, false, nil, err
		}
		return &existing, false, nil, nil
	}

	return &certificate, true, nil, nil
}

func sendCertificateEmail(userID uint, certificate *courseModels.Certificate) {
	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		log.Printf("[CERTIFICATE] skipping email, user %d not found: %v", userID, err)
		return
	}
	var course courseModels.Course
	if err := db.Where("id = ?", certificate.CourseID).First(&course).Error; err != nil {
		log.Printf("[CERTIFICATE] skipping email, course %d not found: %v", certificate.CourseID, err)
		return
	}

	utils.SendCertificateEmail(user.Email, user.Name, course.Title, certificate.CertificateNumber)
}

// GetUserCertificates gets all certificates for the current user
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	type CertificateWithCourse struct {
		courseModels.Certificate
		CourseName string `json:"course_name"`
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ?", userID).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", cert.CourseID).First(&course)
		result[i] = CertificateWithCourse{
			Certificate: cert,
			CourseName:  course.Title,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": result,
		"total":        len(result),
	})
}
