package notify

import "go.uber.org/zap"

const (
	EventRequestCreated    = "request_created"
	EventResponseSubmitted = "response_submitted"
	EventResponseAccepted  = "response_accepted"
	EventRequestExpired    = "request_expired"
	EventRequestCancelled  = "request_cancelled"
	EventRequestResent     = "request_resent"
)

// Gateway - интерфейс для отправки уведомлений о событиях жизненного цикла заявки.
// Доставка fire-and-forget: движок отправляет не более одного раза,
// повторные попытки - забота реализации шлюза.
type Gateway interface {
	Push(eventKind, targetUserId string, payload map[string]interface{})
}

// LogGateway - реализация Gateway, пишущая события в лог.
type LogGateway struct {
	logger *zap.SugaredLogger
}

// NewLogGateway создаёт новый экземпляр LogGateway.
func NewLogGateway(logger *zap.SugaredLogger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Push отправляет событие адресату.
func (g *LogGateway) Push(eventKind, targetUserId string, payload map[string]interface{}) {
	g.logger.Infow("push notification",
		"event", eventKind,
		"target", targetUserId,
		"payload", payload)
}
