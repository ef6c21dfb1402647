package logging

import (
	"io"
	"strconv"
	"testing"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// newBenchService constructs a Service with a discard logger at the given level.
// It bypasses Initialize() to avoid I/O setup and focuses on pure logging overhead.
func newBenchService(level zerolog.Level) *Service {
	s := &Service{}
	logger := zerolog.New(io.Discard).Level(level)
	s.logger.Store(&logger)
	s.isInitialized.Store(true)
	return s
}

func makeDetailedChain(depth int) error {
	err := smerrors.New(smerrors.Op("op_0")).Msg("root cause message")
	for i := 1; i < depth; i++ {
		err = smerrors.New(smerrors.Op("op_" + strconv.Itoa(i))).Err(err).Msg("wrapped message")
	}
	return err
}

func BenchmarkEmit_Info(b *testing.B) {
	s := newBenchService(zerolog.InfoLevel)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Emit(zerolog.InfoLevel, "Class: %s, method: %s", "Store", "Save")
	}
}

func BenchmarkEmit_DebugDisabled(b *testing.B) {
	s := newBenchService(zerolog.InfoLevel)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Emit(zerolog.DebugLevel, "arg: %v", i)
	}
}

func BenchmarkErrorWith_DetailedChain6(b *testing.B) {
	s := newBenchService(zerolog.ErrorLevel)
	err := makeDetailedChain(6)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ErrorWith().Err(err).Msg("oops")
	}
}

func BenchmarkParallel_Emit(b *testing.B) {
	s := newBenchService(zerolog.InfoLevel)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s.Emit(zerolog.InfoLevel, "Class: %s, method: %s", "Store", "Save")
		}
	})
}
