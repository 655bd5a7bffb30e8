package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenBus_UnmappedReadReturnsLastBusValue(t *testing.T) {
	m := New()

	m.Write(0x0000, 0x42) // ordinary RAM write also updates the bus latch
	assert.Equal(t, uint8(0x42), m.Read(0x4018), "no device answers $4018; open bus carries the last value")

	m.Write(0x0001, 0x99)
	assert.Equal(t, uint8(0x99), m.Read(0x5FFF), "open bus tracks the most recent write, not just reads")
}

func TestOpenBus_EveryAccessUpdatesTheLatch(t *testing.T) {
	m := New()

	m.Write(0x0000, 0xAB)
	assert.Equal(t, uint8(0xAB), m.Read(0x0000))

	// Reading a mapped byte updates the bus latch to that byte too.
	m.Write(0x0001, 0xCD)
	got := m.Read(0x0001)
	assert.Equal(t, uint8(0xCD), got)
	assert.Equal(t, uint8(0xCD), m.Read(0x5000), "the read of $0001 became the new open-bus value")
}

func TestRAMMirroring(t *testing.T) {
	m := New()
	m.Write(0x0042, 0x77)
	assert.Equal(t, uint8(0x77), m.Read(0x0842), "$0842 mirrors $0042 every $0800")
	assert.Equal(t, uint8(0x77), m.Read(0x1842))
}

type fakeInput struct {
	reads  [2]uint8
	writes []uint8
}

func (f *fakeInput) Read(port int) uint8 {
	return f.reads[port]
}

func (f *fakeInput) Write(value uint8) {
	f.writes = append(f.writes, value)
}

func TestControllerPortsRouteThroughInput(t *testing.T) {
	m := New()
	fake := &fakeInput{reads: [2]uint8{0x01, 0x00}}
	m.SetInput(fake)

	assert.Equal(t, uint8(0x01), m.Read(0x4016))
	assert.Equal(t, uint8(0x00), m.Read(0x4017))

	m.Write(0x4016, 0x01)
	assert.Equal(t, []uint8{0x01}, fake.writes)
}
