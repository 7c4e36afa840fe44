package utils

import (
	"log"
	"time"

	"lms/config"

	"github.com/go-resty/resty/v2"
)

// PublishGradeNotification posts a grade event to the notification
// service. Fire-and-forget: a delivery failure is logged and never
// propagated back into the grading transaction.
func PublishGradeNotification(studentID, testID uint, testTitle string, score float64) {
	go func() {
		client := resty.New().SetTimeout(10 * time.Second)

		resp, err := client.R().
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]interface{}{
				"studentId": studentID,
				"testId":    testID,
				"testTitle": testTitle,
				"score":     score,
			}).
			Post(config.AppConfig.NotificationServiceURL)
		if err != nil {
			log.Printf("[NOTIFY] grade event for student %d test %d failed: %v", studentID, testID, err)
			return
		}
		if resp.StatusCode() >= 300 {
			log.Printf("[NOTIFY] grade event for student %d test %d rejected: %s", studentID, testID, resp.Status())
		}
	}()
}
