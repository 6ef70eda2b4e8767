package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLeaseTTL(t *testing.T) {
	tests := []struct {
		name string
		tick time.Duration
		want time.Duration
	}{
		{"default minute tick", 60 * time.Second, 59 * time.Second},
		{"two second tick", 2 * time.Second, time.Second},
		{"one second tick never yields zero", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &ReminderScheduler{Tick: tt.tick}
			assert.Equal(t, tt.want, s.leaseTTL())
		})
	}
}
