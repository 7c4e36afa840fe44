package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lms/grading"
	courseModels "lms/models/course"
)

func TestCertificateSubmissionNotFound(t *testing.T) {
	db := newTestDB(t)
	seedCourse(t, db, 1, 1)

	_, _, failure, err := issueCertificateForSubmission(db, 9999, 1)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailureNotFound, failure.Kind)
}

func TestCertificateOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)
	test, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)
	submission := seedGradedSubmission(t, db, 1, test.ID, 95, time.Now())

	_, _, failure, err := issueCertificateForSubmission(db, submission.ID, 42)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailureAuthorization, failure.Kind)
}

func TestCertificateRequiresGradedSubmission(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)
	test, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyManual, 1)

	var question courseModels.Question
	require.NoError(t, db.Where("test_id = ?", test.ID).First(&question).Error)
	pending, failure, err := submitTest(db, 1, test.ID, []grading.AnswerInput{
		{QuestionID: question.ID, AnswerText: "essay"},
	})
	require.NoError(t, err)
	require.Nil(t, failure)

	_, _, failure, err = issueCertificateForSubmission(db, pending.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailurePrecondition, failure.Kind)
}

func TestCertificateRequiresPassingScore(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)
	test, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)
	submission := seedGradedSubmission(t, db, 1, test.ID, 69.99, time.Now())

	_, _, failure, err := issueCertificateForSubmission(db, submission.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailurePrecondition, failure.Kind)
	require.Equal(t, 69.99, failure.Context["score"])
	require.Equal(t, 70.0, failure.Context["passing_score"])
}

func TestCertificateRequiresAllLessonsComplete(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 2)
	test, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)
	submission := seedGradedSubmission(t, db, 1, test.ID, 95, time.Now())

	_, failureBefore, err := completeLesson(db, 1, f.Lessons[0].ID)
	require.NoError(t, err)
	require.Nil(t, failureBefore)

	_, _, failure, err := issueCertificateForSubmission(db, submission.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailurePrecondition, failure.Kind)
	require.EqualValues(t, 1, failure.Context["completed_lessons"])
	require.EqualValues(t, 2, failure.Context["total_lessons"])
}

func TestCertificateRetakeFlow(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 2)
	test, correctIDs, wrongIDs := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 2)
	completeAllLessons(t, db, 1, f)

	var questions []courseModels.Question
	require.NoError(t, db.Where("test_id = ?", test.ID).Order("position asc").Find(&questions).Error)

	// first attempt scores 50, below the 70 passing score
	failed, failure, err := submitTest(db, 1, test.ID, []grading.AnswerInput{
		{QuestionID: questions[0].ID, SelectedOptionIDs: []uint{correctIDs[0]}},
		{QuestionID: questions[1].ID, SelectedOptionIDs: []uint{wrongIDs[1]}},
	})
	require.NoError(t, err)
	require.Nil(t, failure)
	require.Equal(t, 50.0, *failed.Score)

	_, _, failure, err = issueCertificateForSubmission(db, failed.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailurePrecondition, failure.Kind)

	// retake with full marks
	passed, failure, err := submitTest(db, 1, test.ID, []grading.AnswerInput{
		{QuestionID: questions[0].ID, SelectedOptionIDs: []uint{correctIDs[0]}},
		{QuestionID: questions[1].ID, SelectedOptionIDs: []uint{correctIDs[1]}},
	})
	require.NoError(t, err)
	require.Nil(t, failure)
	require.Equal(t, 100.0, *passed.Score)

	certificate, created, failure, err := issueCertificateForSubmission(db, passed.ID, 1)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.True(t, created)
	require.Equal(t, passed.ID, certificate.SubmissionID)
	require.Equal(t, 100.0, certificate.Score)
	require.NotEmpty(t, certificate.CertificateNumber)

	// reissuing returns the same certificate, nothing new is created
	again, created, failure, err := issueCertificateForSubmission(db, passed.ID, 1)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.False(t, created)
	require.Equal(t, certificate.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&courseModels.Certificate{}).
		Where("user_id = ? AND course_id = ?", 1, f.Course.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCourseCertificateNoTests(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)

	_, _, failure, err := issueCertificateForCourse(db, f.Course.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailurePrecondition, failure.Kind)
}

func TestCourseCertificateNotEnrolled(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)
	seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)

	_, _, failure, err := issueCertificateForCourse(db, f.Course.ID, 42)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailureAuthorization, failure.Kind)
}

func TestCourseCertificateReportsMissingTests(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)
	passedTest, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)
	missingTest, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)

	seedGradedSubmission(t, db, 1, passedTest.ID, 90, time.Now())
	// the second test only has a failing attempt
	seedGradedSubmission(t, db, 1, missingTest.ID, 40, time.Now())

	_, _, failure, err := issueCertificateForCourse(db, f.Course.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, failure)
	require.Equal(t, FailurePrecondition, failure.Kind)
	require.Equal(t, []uint{missingTest.ID}, failure.Context["missing_test_ids"])
}

func TestCourseCertificatePicksBestSubmission(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)
	test, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)

	now := time.Now()
	seedGradedSubmission(t, db, 1, test.ID, 80, now.Add(-2*time.Hour))
	best := seedGradedSubmission(t, db, 1, test.ID, 95, now.Add(-time.Hour))

	certificate, created, failure, err := issueCertificateForCourse(db, f.Course.ID, 1)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.True(t, created)
	require.Equal(t, best.ID, certificate.SubmissionID)
	require.Equal(t, 95.0, certificate.Score)
}

func TestCourseCertificateTieBreaksOnRecency(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 0)
	test, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)

	now := time.Now()
	seedGradedSubmission(t, db, 1, test.ID, 95, now.Add(-2*time.Hour))
	latest := seedGradedSubmission(t, db, 1, test.ID, 95, now.Add(-time.Hour))

	certificate, _, failure, err := issueCertificateForCourse(db, f.Course.ID, 1)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.Equal(t, latest.ID, certificate.SubmissionID)
}

func TestCourseCertificateIdempotent(t *testing.T) {
	db := newTestDB(t)
	f := seedCourse(t, db, 1, 1)
	test, _, _ := seedSingleChoiceTest(t, db, f, courseModels.StrategyAuto, 1)
	completeAllLessons(t, db, 1, f)
	seedGradedSubmission(t, db, 1, test.ID, 90, time.Now())

	first, created, failure, err := issueCertificateForCourse(db, f.Course.ID, 1)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.True(t, created)

	second, created, failure, err := issueCertificateForCourse(db, f.Course.ID, 1)
	require.NoError(t, err)
	require.Nil(t, failure)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.CertificateNumber, second.CertificateNumber)
}
