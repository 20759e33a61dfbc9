package entity

import "time"

type BatchStatus string

const (
	StatusProcessing BatchStatus = "processing"
	StatusCompleted  BatchStatus = "completed"
	StatusCancelled  BatchStatus = "cancelled"
)

type Batch struct {
	ID        string             `json:"id"`
	Status    BatchStatus        `json:"status"`
	Request   ConversionRequest  `json:"request"`
	Progress  BatchProgress      `json:"progress"`
	Results   []ConversionResult `json:"results"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (b *Batch) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

func (b *Batch) Failed() int {
	return len(b.Results) - b.Succeeded()
}

// ResultEvent is published to the message broker once per converted file.
type ResultEvent struct {
	BatchID  string           `json:"batch_id"`
	Result   ConversionResult `json:"result"`
	Progress BatchProgress    `json:"progress"`
	Time     time.Time        `json:"time"`
}

type ConvertResponse struct {
	ID     string      `json:"id"`
	Status BatchStatus `json:"status"`
}
