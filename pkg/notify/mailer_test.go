package notify

import (
	"context"
	"io"
	"log"
	"testing"
)

func TestSendReportsFailureAsFalse(t *testing.T) {
	m := NewMailer(Config{
		Host: "smtp.example.com",
		Port: 587,
		From: "not an address",
	}, log.New(io.Discard, "", 0))

	ok := m.Send(context.Background(), Message{
		To:      "reader@example.com",
		Subject: "subject",
	})
	if ok {
		t.Fatalf("expected Send to fail for an invalid sender address")
	}
}

func TestSendRejectsInvalidRecipient(t *testing.T) {
	m := NewMailer(Config{
		Host: "smtp.example.com",
		Port: 587,
		From: "bot@example.com",
	}, log.New(io.Discard, "", 0))

	ok := m.Send(context.Background(), Message{
		To:      "not an address",
		Subject: "subject",
	})
	if ok {
		t.Fatalf("expected Send to fail for an invalid recipient address")
	}
}
