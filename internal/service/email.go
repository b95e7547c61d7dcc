package service

import (
	"context"

	"go.uber.org/zap"
)

// EmailSender — внешний коллаборатор доставки писем. Ядро формирует только
// содержимое (тему, ссылки), транспорт остаётся снаружи.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogEmailSender пишет факт отправки в лог вместо реальной доставки.
// Используется в dev-окружении и тестах. Тело письма в лог не попадает.
type LogEmailSender struct {
	Logger *zap.SugaredLogger
}

func (s *LogEmailSender) Send(_ context.Context, to, subject, _ string) error {
	s.Logger.Infow("email sent", "to", to, "subject", subject)
	return nil
}
