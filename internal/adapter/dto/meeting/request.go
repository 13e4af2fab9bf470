package meeting

// ListMeetingsRequest carries optional query parameters for the list view.
type ListMeetingsRequest struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=200"`
}

// UploadRequest is validated before the pipeline runs; the file body itself
// arrives as multipart form data.
type UploadRequest struct {
	Filename string `validate:"required,audioext"`
}
