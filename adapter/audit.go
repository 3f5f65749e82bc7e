package adapter

import (
	"github.com/srediag/xshm/api"
	"github.com/srediag/xshm/internal/log"
	"github.com/srediag/xshm/pkg/events"
)

// LogAuditAdapter writes structured audit events through internal/log
// rather than to an external compliance system — this module has no
// network egress of its own, so "external" here means the process's own
// log stream.
type LogAuditAdapter struct {
	logger *log.Logger
}

// NewLogAuditAdapter creates an audit adapter writing under the "audit"
// logger name.
func NewLogAuditAdapter() *LogAuditAdapter {
	return &LogAuditAdapter{logger: log.New("audit")}
}

// LogEvent implements api.Audit.
func (a *LogAuditAdapter) LogEvent(event string, details map[string]interface{}) error {
	a.logger.Infof("%s %v", event, details)
	return nil
}

// OnEvent turns CONNECT/DISCONNECT/ERROR deliveries for the channel called
// name into audit log lines; DATA_AVAILABLE and SPACE_AVAILABLE are too
// frequent to be audit-worthy and are skipped. It takes the channel name
// as well as the kind, so it is passed to Listen (which takes a
// func(events.Kind)) through a closure that supplies the name.
func (a *LogAuditAdapter) OnEvent(name string, kind events.Kind) {
	switch kind {
	case events.Connect, events.Disconnect, events.Error:
		_ = a.LogEvent(kind.Label(), map[string]interface{}{"channel": name})
	}
}

var _ api.Audit = (*LogAuditAdapter)(nil)
