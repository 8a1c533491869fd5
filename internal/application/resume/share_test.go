package resume

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	workflowport "resume-ai-api/internal/workflow/port"
	apperrors "resume-ai-api/pkg/errors"
)

type recordingNotifier struct {
	to, body string
	demo     bool
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, to, body string) (*workflowport.Delivery, error) {
	n.to, n.body = to, body
	if n.err != nil {
		return nil, n.err
	}
	return &workflowport.Delivery{ID: "1-0", To: to, DemoMode: n.demo, QueuedAt: time.Now()}, nil
}

func TestComposeMessage(t *testing.T) {
	if got := ComposeMessage(""); got != "Here is your resume from Resume Bot. Thank you for using our service!" {
		t.Errorf("ComposeMessage(empty) = %q", got)
	}
	if got := ComposeMessage("Jane Doe"); got != "Here is your resume from Resume Bot:\n\nJane Doe" {
		t.Errorf("ComposeMessage() = %q", got)
	}
}

func TestFormatForChannel(t *testing.T) {
	short := FormatForChannel("hello", 10)
	if short != "Your resume is ready! Here's the content:\n\nhello" {
		t.Errorf("short body = %q", short)
	}

	long := FormatForChannel(strings.Repeat("é", 12), 10)
	want := "Your resume is ready! Here's a summary:\n\n" + strings.Repeat("é", 10) +
		"\n\n[Message truncated due to length limits. Download the full resume from the website.]"
	if long != want {
		t.Errorf("long body = %q", long)
	}

	if got := FormatForChannel(strings.Repeat("a", 1000), 0); !strings.HasPrefix(got, channelContentPrefix) {
		t.Errorf("default limit should keep 1000 runes intact")
	}
}

func TestFormatAddress(t *testing.T) {
	if got := FormatAddress("whatsapp:", "+15550001111"); got != "whatsapp:+15550001111" {
		t.Errorf("FormatAddress() = %q", got)
	}
	if got := FormatAddress("whatsapp:", "whatsapp:+1"); got != "whatsapp:+1" {
		t.Errorf("prefix duplicated: %q", got)
	}
	if got := FormatAddress("", "+1"); got != "+1" {
		t.Errorf("FormatAddress(no prefix) = %q", got)
	}
}

func TestSharer_Share(t *testing.T) {
	n := &recordingNotifier{demo: true}
	s := NewSharer(n, SharerOptions{AddressPrefix: "whatsapp:"})

	res, err := s.Share(context.Background(), ShareRequest{PhoneNumber: " +15550001111 ", ResumeData: "Jane"})
	if err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if !res.DemoMode || res.DeliveryID != "1-0" {
		t.Errorf("result = %+v", res)
	}
	if n.to != "whatsapp:+15550001111" {
		t.Errorf("to = %q", n.to)
	}
	wantBody := "Your resume is ready! Here's the content:\n\nHere is your resume from Resume Bot:\n\nJane"
	if n.body != wantBody {
		t.Errorf("body = %q", n.body)
	}
}

func TestSharer_Errors(t *testing.T) {
	s := NewSharer(&recordingNotifier{}, SharerOptions{})
	_, err := s.Share(context.Background(), ShareRequest{PhoneNumber: "  "})
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidParam || appErr.Detail != "Phone number is required" {
		t.Errorf("missing phone error = %v", err)
	}

	failing := NewSharer(&recordingNotifier{err: errors.New("redis down")}, SharerOptions{})
	_, err = failing.Share(context.Background(), ShareRequest{PhoneNumber: "+1"})
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotifyFailed {
		t.Errorf("notify failure code = %s", appErr.Code)
	}
}
