package meeting

// UploadMeetingRequest carries the form fields of a recording upload. The
// audio file itself travels as the "meeting" multipart part.
type UploadMeetingRequest struct {
	Title string `form:"title" validate:"required"`
}
