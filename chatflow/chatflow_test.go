package chatflow

import (
	"context"
	"errors"
	"testing"

	"github.com/xpertai/sitekit/backend"
)

// scriptAPI replays canned replies and records what the client sent.
type scriptAPI struct {
	replies []backend.ChatReply
	errs    []error
	calls   []call
}

type call struct {
	field  *string
	answer *string
}

func (s *scriptAPI) Message(_ context.Context, field, answer *string) (backend.ChatReply, error) {
	s.calls = append(s.calls, call{field, answer})
	i := len(s.calls) - 1
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], err
	}
	return backend.ChatReply{}, err
}

func str(s string) *string { return &s }

func TestStartSendsBeginSignal(t *testing.T) {
	api := &scriptAPI{replies: []backend.ChatReply{
		{NextQuestion: "What's your name?", NextField: str("name")},
	}}
	c := New()
	if err := c.Start(context.Background(), api, false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if len(api.calls) != 1 || api.calls[0].field != nil || api.calls[0].answer != nil {
		t.Fatalf("begin signal must send null field and null answer, got %+v", api.calls)
	}

	tr := c.Transcript()
	if len(tr) != 2 {
		t.Fatalf("transcript = %+v, want welcome + first question", tr)
	}
	if tr[0].Sender != Bot || tr[1].Text != "What's your name?" {
		t.Errorf("transcript = %+v", tr)
	}
	if c.CurrentField() != "name" {
		t.Errorf("current field = %q, want name", c.CurrentField())
	}
	if c.InputDisabled() {
		t.Error("input should be enabled once the server asks a question")
	}
}

func TestStartRetriesAfterTransportFailure(t *testing.T) {
	boom := errors.New("connect refused")
	api := &scriptAPI{
		errs: []error{boom},
		replies: []backend.ChatReply{
			{},
			{NextQuestion: "Name?", NextField: str("name")},
		},
	}
	c := New()
	if err := c.Start(context.Background(), api, false); !errors.Is(err, boom) {
		t.Fatalf("Start = %v, want transport error", err)
	}
	if !c.InputDisabled() || c.Complete() {
		t.Error("a failed start must leave input disabled and the flow incomplete")
	}

	// A second Start retries the begin signal without a second welcome.
	if err := c.Start(context.Background(), api, false); err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	tr := c.Transcript()
	welcomes := 0
	for _, m := range tr {
		if m.Text == welcomeText {
			welcomes++
		}
	}
	if welcomes != 1 {
		t.Errorf("welcome appears %d times in %+v", welcomes, tr)
	}
	if c.CurrentField() != "name" {
		t.Errorf("current field = %q, want name", c.CurrentField())
	}
	if c.InputDisabled() {
		t.Error("input should reopen once the retry gets a question")
	}
}

func TestRestartClearsTranscript(t *testing.T) {
	api := &scriptAPI{replies: []backend.ChatReply{
		{NextQuestion: "Name?", NextField: str("name")},
		{NextQuestion: "Name?", NextField: str("name")},
	}}
	c := New()
	if err := c.Start(context.Background(), api, false); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(context.Background(), api, true); err != nil {
		t.Fatal(err)
	}
	tr := c.Transcript()
	// Welcome, restart notice, first question; nothing from the first run.
	if len(tr) != 3 {
		t.Fatalf("transcript after restart = %+v", tr)
	}
	if tr[1].Sender != Bot || tr[1].Text == "" {
		t.Errorf("expected a restart notice, got %+v", tr[1])
	}
}

func TestSendEchoesFieldAndAnswer(t *testing.T) {
	api := &scriptAPI{replies: []backend.ChatReply{
		{NextQuestion: "Name?", NextField: str("name")},
		{NextQuestion: "Email?", NextField: str("email")},
		{NextQuestion: "Thanks! We'll be in touch.", NextField: nil},
	}}
	c := New()
	if err := c.Start(context.Background(), api, false); err != nil {
		t.Fatal(err)
	}
	if err := c.Send(context.Background(), api, "Ada"); err != nil {
		t.Fatal(err)
	}
	sent := api.calls[1]
	if sent.field == nil || *sent.field != "name" || sent.answer == nil || *sent.answer != "Ada" {
		t.Fatalf("send payload = %+v, want field name answer Ada", sent)
	}
	if c.CurrentField() != "email" {
		t.Errorf("current field = %q, want email", c.CurrentField())
	}

	if err := c.Send(context.Background(), api, "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	if !c.Complete() {
		t.Error("nil next_field should complete the flow")
	}
	if !c.InputDisabled() {
		t.Error("completed flow must disable input")
	}
	if err := c.Send(context.Background(), api, "extra"); !errors.Is(err, ErrInputDisabled) {
		t.Errorf("Send after completion = %v, want ErrInputDisabled", err)
	}
}

func TestValidationErrorDoesNotAdvanceField(t *testing.T) {
	api := &scriptAPI{replies: []backend.ChatReply{
		{NextQuestion: "Email?", NextField: str("email")},
		{Error: "That doesn't look like an email address."},
		{NextQuestion: "Phone?", NextField: str("phone")},
	}}
	c := New()
	if err := c.Start(context.Background(), api, false); err != nil {
		t.Fatal(err)
	}
	if err := c.Send(context.Background(), api, "not-an-email"); err != nil {
		t.Fatalf("a rejected answer is not a transport error: %v", err)
	}

	if c.CurrentField() != "email" {
		t.Errorf("field advanced to %q on a rejected answer", c.CurrentField())
	}
	tr := c.Transcript()
	last := tr[len(tr)-1]
	if last.Sender != Bot || !last.Error || last.Text != "That doesn't look like an email address." {
		t.Errorf("last line = %+v, want error-styled bot message", last)
	}

	// Retrying the same field succeeds and advances.
	if err := c.Send(context.Background(), api, "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	if got := api.calls[2]; got.field == nil || *got.field != "email" {
		t.Errorf("retry sent field %v, want email", got.field)
	}
	if c.CurrentField() != "phone" {
		t.Errorf("current field = %q, want phone", c.CurrentField())
	}
}

func TestTransportFailureKeepsField(t *testing.T) {
	boom := errors.New("connection refused")
	api := &scriptAPI{
		replies: []backend.ChatReply{{NextQuestion: "Name?", NextField: str("name")}, {}},
		errs:    []error{nil, boom},
	}
	c := New()
	if err := c.Start(context.Background(), api, false); err != nil {
		t.Fatal(err)
	}
	if err := c.Send(context.Background(), api, "Ada"); !errors.Is(err, boom) {
		t.Fatalf("Send = %v, want the transport error", err)
	}

	if c.CurrentField() != "name" {
		t.Errorf("field = %q after transport failure, want name", c.CurrentField())
	}
	tr := c.Transcript()
	// The visitor's own line lands before the failure notice.
	if tr[len(tr)-2].Sender != User || tr[len(tr)-2].Text != "Ada" {
		t.Errorf("visitor message missing before the error line: %+v", tr)
	}
	if last := tr[len(tr)-1]; last.Sender != Bot || !last.Error {
		t.Errorf("last line = %+v, want error-styled bot message", last)
	}
	if c.InputDisabled() {
		t.Error("input should reopen after a transport failure")
	}
}

func TestSendBeforeStart(t *testing.T) {
	c := New()
	if err := c.Send(context.Background(), &scriptAPI{}, "hello"); !errors.Is(err, ErrInputDisabled) {
		t.Errorf("Send before start = %v, want ErrInputDisabled", err)
	}
}

func TestTranscriptReturnsCopy(t *testing.T) {
	api := &scriptAPI{replies: []backend.ChatReply{
		{NextQuestion: "Name?", NextField: str("name")},
	}}
	c := New()
	if err := c.Start(context.Background(), api, false); err != nil {
		t.Fatal(err)
	}
	tr := c.Transcript()
	tr[0].Text = "mutated"
	if c.Transcript()[0].Text == "mutated" {
		t.Error("Transcript must return a copy")
	}
}
