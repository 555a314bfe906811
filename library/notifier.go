package library

import (
	"fmt"
	"io"
	"log/slog"
)

// ReminderMessage is the text sent by Session.SendReminder.
const ReminderMessage = "Please return the borrowed items."

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(user *User, message string) error
}

// WriterNotifier prints notifications, one per line.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(user *User, message string) error {
	_, err := fmt.Fprintf(n.W, "Notification sent to %s: %s\n", user.Name, message)
	return err
}

// LogNotifier records notifications in the log instead of delivering them.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(user *User, message string) error {
	n.Logger.Info("notification sent", "user_id", user.ID, "email", user.Email, "message", message)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
