package engine

import "go.uber.org/zap"

// Notifier receives the cadence summaries. Delivery beyond the log (mail,
// chat) is wired by the caller.
type Notifier interface {
	Notify(subject, body string) error
}

// LogNotifier writes summaries to the structured log.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(subject, body string) error {
	n.log.Info("summary", zap.String("subject", subject), zap.String("body", body))
	return nil
}
