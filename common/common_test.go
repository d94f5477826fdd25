package common

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"testing"
	"time"
)

func TestDecimalToFixed(t *testing.T) {
	cases := []struct {
		in        float64
		precision int
		want      float64
	}{
		{1.2345, 2, 1.23},
		{1.235, 2, 1.24},
		{-1.235, 2, -1.24},
		{12.5, 0, 13},
		{0, 3, 0},
	}
	for _, c := range cases {
		if got := DecimalToFixed(c.in, c.precision); got != c.want {
			t.Errorf("DecimalToFixed(%v, %d) have %v want %v", c.in, c.precision, got, c.want)
		}
	}
}

func TestSlogResetLevel(t *testing.T) {
	reset := SlogResetLevel(slog.LevelError)
	if slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn enabled after raising level")
	}
	reset()
	if !slog.Default().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info not enabled after reset")
	}
}

func TestInterruptContext(t *testing.T) {
	exited := make(chan int, 1)
	ctx, cancel := InterruptContext(context.Background(), func(code int) { exited <- code })
	defer cancel()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled by signal")
	}
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	select {
	case code := <-exited:
		if code != 1 {
			t.Errorf("have %d want 1", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not exit")
	}
}

func TestInterrupted_Stop(t *testing.T) {
	c := Interrupted()
	signal.Stop(c)
	select {
	case sig := <-c:
		t.Errorf("unexpected signal %v", sig)
	default:
	}
}
