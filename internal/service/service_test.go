package service

import (
	"testing"

	"github.com/sitectl/sitectl/internal/errors"
	"github.com/sitectl/sitectl/internal/executor"
)

func TestStartRecordsUnit(t *testing.T) {
	mock := &executor.MockExecutor{}
	m := NewManagerWithExecutor(mock)

	if err := m.Start("nginx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(mock.Calls))
	}
	call := mock.Calls[0]
	if call.Name != "systemctl" || call.Args[0] != "start" || call.Args[1] != "nginx" {
		t.Errorf("unexpected call: %v", call)
	}
}

func TestStartFailureWrapsOutput(t *testing.T) {
	mock := &executor.MockExecutor{
		ExecuteFunc: func(name string, args ...string) ([]byte, error) {
			return []byte("Failed to start nginx.service: Unit not found."), errors.New("exit status 5")
		},
	}
	m := NewManagerWithExecutor(mock)

	err := m.Start("nginx")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
		want   bool
	}{
		{name: "active", output: "active\n", want: true},
		{name: "inactive", output: "inactive\n", err: errors.New("exit status 3"), want: false},
		{name: "failed", output: "failed\n", err: errors.New("exit status 3"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &executor.MockExecutor{
				ExecuteFunc: func(name string, args ...string) ([]byte, error) {
					return []byte(tt.output), tt.err
				},
			}
			m := NewManagerWithExecutor(mock)
			if got := m.IsActive("nginx"); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}
