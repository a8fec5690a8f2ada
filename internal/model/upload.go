package model

import "time"

// Upload is a lead file accepted from an operator. Content is carried
// alongside the metadata when the upload is loaded for a run.
type Upload struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	Content   []byte    `json:"-"`
}
