package engine

import (
	"time"

	"github.com/mamadbah2/hatchlog/internal/dates"
	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func incubation(id, batch string, start time.Time) models.Incubation {
	inc := models.NewIncubation("u1", batch, start, 12, "")
	inc.ID = id
	return inc
}

func medication(id, name string, next *time.Time) models.Medication {
	med := models.Medication{ID: id, UserID: "u1", Name: name, DateGiven: dates.At(day(2024, 1, 1))}
	if next != nil {
		med.NextSchedule = dates.Ptr(*next)
	}
	return med
}

func feeding(id string, at time.Time, amount float64) models.Feeding {
	return models.Feeding{ID: id, UserID: "u1", Date: dates.At(at), FeedType: "Layer mash", Amount: amount}
}

func messages(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Message)
	}
	return out
}
