package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/goliatone/go-formkit/pkg/model"
)

// SubmissionTimeLayout is the ISO-8601 layout used for submittedAt: UTC with
// millisecond precision, e.g. 2024-03-01T09:30:00.000Z.
const SubmissionTimeLayout = "2006-01-02T15:04:05.000Z07:00"

var (
	downloadWhitespace = regexp.MustCompile(`\s+`)

	errSubmissionTitle = errors.New("render: submission formTitle is required")
)

// Submission is the exported record of a completed form.
type Submission struct {
	FormTitle   string
	SubmittedAt time.Time
	Responses   model.FormData
}

type submissionJSON struct {
	FormTitle   string         `json:"formTitle"`
	SubmittedAt string         `json:"submittedAt"`
	Responses   model.FormData `json:"responses"`
}

// NewSubmission snapshots data as the responses of schema, stamped at.
// Answers of hidden fields are kept; only untouched fields are absent.
func NewSubmission(schema model.FormSchema, data model.FormData, at time.Time) Submission {
	responses := make(model.FormData, len(data))
	for id, value := range data.Clone() {
		if !value.Present() {
			continue
		}
		responses[id] = value
	}
	return Submission{
		FormTitle:   schema.Title,
		SubmittedAt: at,
		Responses:   responses,
	}
}

// MarshalJSON emits {formTitle, submittedAt, responses}.
func (s Submission) MarshalJSON() ([]byte, error) {
	responses := s.Responses
	if responses == nil {
		responses = model.FormData{}
	}
	return json.Marshal(submissionJSON{
		FormTitle:   s.FormTitle,
		SubmittedAt: s.SubmittedAt.UTC().Format(SubmissionTimeLayout),
		Responses:   responses,
	})
}

// UnmarshalJSON accepts any RFC 3339 timestamp for submittedAt.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var raw submissionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Submission{FormTitle: raw.FormTitle, Responses: raw.Responses}
	if raw.SubmittedAt != "" {
		at, err := time.Parse(time.RFC3339Nano, raw.SubmittedAt)
		if err != nil {
			return fmt.Errorf("render: submittedAt: %w", err)
		}
		out.SubmittedAt = at
	}
	*s = out
	return nil
}

// Encode renders the submission as two-space indented JSON, the download
// format.
func (s Submission) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("render: encode submission: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParseSubmission decodes a submission file and coerces its responses onto the
// kinds declared by schema.
func ParseSubmission(schema model.FormSchema, raw []byte) (Submission, error) {
	var envelope struct {
		FormTitle   string         `json:"formTitle"`
		SubmittedAt string         `json:"submittedAt"`
		Responses   map[string]any `json:"responses"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return Submission{}, fmt.Errorf("render: decode submission: %w", err)
	}
	if strings.TrimSpace(envelope.FormTitle) == "" {
		return Submission{}, errSubmissionTitle
	}

	responses, err := model.NormalizeData(schema, envelope.Responses)
	if err != nil {
		return Submission{}, fmt.Errorf("render: submission responses: %w", err)
	}

	out := Submission{FormTitle: envelope.FormTitle, Responses: responses}
	if envelope.SubmittedAt != "" {
		at, err := time.Parse(time.RFC3339Nano, envelope.SubmittedAt)
		if err != nil {
			return Submission{}, fmt.Errorf("render: submittedAt: %w", err)
		}
		out.SubmittedAt = at
	}
	return out, nil
}

// DownloadName derives the download file name from a form title:
// "Patient Intake Form" becomes "patient-intake-form-submission.json".
func DownloadName(title string) string {
	return downloadWhitespace.ReplaceAllString(strings.ToLower(title), "-") + "-submission.json"
}
