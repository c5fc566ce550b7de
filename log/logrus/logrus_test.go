package logrus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/rangecache"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Debug("range requested", rangecache.Fields{"serie": "cpu"})
	l.Error("invalidate outage", nil)

	require.Len(t, hook.Entries, 2)
	require.Equal(t, logrus.DebugLevel, hook.Entries[0].Level)
	require.Equal(t, "cpu", hook.Entries[0].Data["serie"])
	require.Equal(t, "rangecache", hook.Entries[0].Data["component"])
	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	require.Equal(t, "invalidate outage", hook.LastEntry().Message)
}
