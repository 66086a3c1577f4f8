package smcmetrics

import (
	"time"

	"github.com/dantte-lp/smcecho/internal/echo"
	"github.com/dantte-lp/smcecho/internal/netio"
)

var (
	_ netio.MetricsReporter = (*Collector)(nil)
	_ echo.SessionReporter  = (*Collector)(nil)
)

// ObserveSyscall implements netio.MetricsReporter.
func (c *Collector) ObserveSyscall(op string, family netio.Family, elapsed time.Duration, err error) {
	c.RecordSyscall(op, family.String(), elapsed, err)
}

// SessionStarted implements echo.SessionReporter.
func (c *Collector) SessionStarted(family netio.Family) {
	c.IncSessions(family.String())
}

// BytesEchoed implements echo.SessionReporter.
func (c *Collector) BytesEchoed(family netio.Family, n int64) {
	c.AddEchoedBytes(family.String(), n)
}
