package timing

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAlreadyRunning = errors.New("stopwatch already running")
	ErrNotRunning     = errors.New("stopwatch not running")
)

// TaskInfo es una tarea ya cronometrada.
type TaskInfo struct {
	Name    string
	Elapsed time.Duration
}

// Stopwatch mide una o más tareas secuenciales. No es seguro para uso
// concurrente: cada llamada interceptada crea el suyo.
type Stopwatch struct {
	id    string
	now   func() time.Time
	tasks []TaskInfo

	running     bool
	currentName string
	startedAt   time.Time
	total       time.Duration
}

func NewStopwatch(id string) *Stopwatch {
	return &Stopwatch{id: id, now: time.Now}
}

func (s *Stopwatch) ID() string { return s.id }

func (s *Stopwatch) Start(taskName string) error {
	if s.running {
		return fmt.Errorf("%w: task %q", ErrAlreadyRunning, s.currentName)
	}
	s.running = true
	s.currentName = taskName
	s.startedAt = s.now()
	return nil
}

func (s *Stopwatch) Stop() error {
	if !s.running {
		return ErrNotRunning
	}
	elapsed := s.now().Sub(s.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	s.total += elapsed
	s.tasks = append(s.tasks, TaskInfo{Name: s.currentName, Elapsed: elapsed})
	s.running = false
	s.currentName = ""
	return nil
}

func (s *Stopwatch) IsRunning() bool { return s.running }

func (s *Stopwatch) Total() time.Duration { return s.total }

func (s *Stopwatch) Tasks() []TaskInfo {
	out := make([]TaskInfo, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// LastElapsed devuelve la duración de la última tarea detenida.
func (s *Stopwatch) LastElapsed() (time.Duration, error) {
	if len(s.tasks) == 0 {
		return 0, ErrNotRunning
	}
	return s.tasks[len(s.tasks)-1].Elapsed, nil
}

func (s *Stopwatch) ShortSummary() string {
	return fmt.Sprintf("StopWatch '%s': running time = %d ns", s.id, s.total.Nanoseconds())
}

// PrettyPrint produce una tabla con una fila por tarea:
//
//	StopWatch 'seed': running time = 1200 ns
//	---------------------------------------------
//	ns         %     Task name
//	---------------------------------------------
//	000000800  066%  schema
//	000000400  033%  owners
func (s *Stopwatch) PrettyPrint() string {
	const rule = "---------------------------------------------"

	var b strings.Builder
	b.WriteString(s.ShortSummary())
	b.WriteString("\n")
	if len(s.tasks) == 0 {
		b.WriteString("No task info kept")
		return b.String()
	}

	b.WriteString(rule + "\n")
	b.WriteString("ns         %     Task name\n")
	b.WriteString(rule + "\n")
	for _, t := range s.tasks {
		pct := int64(0)
		if s.total > 0 {
			pct = t.Elapsed.Nanoseconds() * 100 / s.total.Nanoseconds()
		}
		fmt.Fprintf(&b, "%09d  %03d%%  %s\n", t.Elapsed.Nanoseconds(), pct, t.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}
