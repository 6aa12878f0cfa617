package domain

import "time"

type Note struct {
	ID          uint64    `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Folder      string    `json:"folder,omitempty"`
	IsEncrypted bool      `json:"is_encrypted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateNoteRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Content     string   `json:"content" validate:"required,max=10000"`
	Tags        []string `json:"tags" validate:"max=10,dive,required,max=50"`
	Folder      string   `json:"folder" validate:"max=100"`
	IsEncrypted bool     `json:"is_encrypted"`
}

type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type UpdateContentRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

type AddTagRequest struct {
	Tag string `json:"tag" validate:"required,max=50"`
}

type UpdateTagsRequest struct {
	Tags []string `json:"tags" validate:"max=10,dive,required,max=50"`
}

type NoteResponse struct {
	ID          uint64    `json:"id"`
	Owner       string    `json:"owner"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Folder      string    `json:"folder,omitempty"`
	IsEncrypted bool      `json:"is_encrypted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CountResponse struct {
	Count uint64 `json:"count"`
	Scope string `json:"scope"`
}
