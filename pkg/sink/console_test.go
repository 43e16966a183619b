package sink

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/NotCoffee418/alc_charger_logger/pkg/frame"
	"github.com/NotCoffee418/alc_charger_logger/pkg/frame/frametest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSinkTable(t *testing.T) {
	batch, err := frame.Decode(frametest.ValidLine())
	require.NoError(t, err)

	var out bytes.Buffer
	at := time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC)
	require.NoError(t, NewConsoleSink(&out).Write(batch, at))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 3+frame.SlotCount)

	assert.Equal(t, "24-03-01 12:00:05", lines[0])
	assert.Equal(t, "Slot Program Status Voltage Current ukn ukn Charged-Capacity Discharged-Capacity Energy unk ", lines[1])

	units := strings.Repeat(" ", 5+8+7) +
		"  (mV)  " + "  (mA)  " +
		strings.Repeat(" ", 4+4) +
		strings.Repeat(" ", 6) + "(mAh)" + strings.Repeat(" ", 6) +
		strings.Repeat(" ", 7) + "(mAh)" + strings.Repeat(" ", 8) +
		" (mW)  " +
		strings.Repeat(" ", 4)
	assert.Equal(t, units, lines[2])

	assert.True(t, strings.HasPrefix(lines[3], "1    3       C      13200   500     0   0   120"), lines[3])
	for i, line := range lines[3:] {
		assert.Len(t, line, len(lines[1]), "row %d", i)
		assert.Equal(t, string(rune('1'+i)), line[:1])
	}
}

func TestConsoleSinkLongValueIsNotTruncated(t *testing.T) {
	slot := frametest.Slot(1)
	slot[frame.PosStatus] = "CHARGING-LONG"
	batch, err := frame.Decode(frametest.Line(slot, frametest.Slot(2), frametest.Slot(3), frametest.Slot(4)))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewConsoleSink(&out).Write(batch, time.Unix(0, 0)))
	assert.Contains(t, out.String(), "3       CHARGING-LONG13200")
}

func TestCenterPutsOddSpaceRight(t *testing.T) {
	assert.Equal(t, " ab  ", center("ab", 5))
	assert.Equal(t, "abc", center("abc", 2))
	assert.Equal(t, "    ", center("", 4))
}
