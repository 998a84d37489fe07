package actuator

import (
	"context"
	"time"

	"github.com/moffa90/go-hella/protocol"
)

// Calibration stage names.
const (
	StageDrive   = "drive"
	StageRelease = "release"
)

// Calibration is the result of Calibrate.
type Calibration struct {
	// Min and Max are the extreme positions, Min <= Max
	Min uint16
	Max uint16

	// Samples holds the last telemetry seen at each stage
	Samples map[string]protocol.PositionSample
}

type calibrationStage struct {
	name     string
	template protocol.Template
}

var calibrationStages = []calibrationStage{
	{StageDrive, protocol.CalibrateDriveTemplate},
	{StageRelease, protocol.CalibrateReleaseTemplate},
}

// Calibrate sweeps the actuator to both mechanical extremes and records the
// raw position at each.
//
// For each stage a command burst drives the actuator, the session waits
// SettleTime, wakes the controller and collects telemetry for
// TelemetryWindow. The last position seen is that extreme. If no telemetry
// arrives at a stage, Calibrate fails with protocol.ErrCalibrationIncomplete.
//
// The restore sequence that returns the controller to run mode is always
// attempted, also on failure.
//
// Progress phases: handshake (idle), seeking, settled (per stage), complete.
func (s *Session) Calibrate(ctx context.Context) (Calibration, error) {
	const op = "calibrate"

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if err := s.handshake(ctx, op); err != nil {
		return Calibration{}, err
	}
	defer s.restoreAfterCalibration(ctx)

	samples := make(map[string]protocol.PositionSample, len(calibrationStages))
	for i, st := range calibrationStages {
		s.reportProgress(Progress{
			Phase:       PhaseSeeking,
			Operation:   op,
			Stage:       st.name,
			Step:        i,
			TotalSteps:  len(calibrationStages),
			Percentage:  float64(i) * 100 / float64(len(calibrationStages)),
			ElapsedTime: time.Since(start),
		})

		if err := s.runMacro(ctx, op, st.template.MustRender()); err != nil {
			return Calibration{}, err
		}
		if err := sleep(ctx, s.config.SettleTime); err != nil {
			return Calibration{}, cancelled(op, err)
		}
		if err := s.handshake(ctx, op); err != nil {
			return Calibration{}, err
		}

		sample, n, err := s.collectTelemetry(ctx, op, s.config.TelemetryWindow)
		if err != nil {
			return Calibration{}, err
		}
		if n == 0 {
			s.logError("no telemetry at extreme", "stage", st.name, "window", s.config.TelemetryWindow)
			return Calibration{}, protocol.CalibrationIncomplete(op, st.name)
		}
		samples[st.name] = sample

		s.logInfo("extreme recorded", "stage", st.name, "position", sample.Position, "samples", n)
		s.reportProgress(Progress{
			Phase:       PhaseSettled,
			Operation:   op,
			Stage:       st.name,
			Step:        i + 1,
			TotalSteps:  len(calibrationStages),
			Percentage:  float64(i+1) * 100 / float64(len(calibrationStages)),
			Position:    sample.Position,
			ElapsedTime: time.Since(start),
		})
	}

	a, b := samples[StageDrive].Position, samples[StageRelease].Position
	result := Calibration{Min: min(a, b), Max: max(a, b), Samples: samples}

	s.reportProgress(Progress{
		Phase:       PhaseComplete,
		Operation:   op,
		Step:        len(calibrationStages),
		TotalSteps:  len(calibrationStages),
		Percentage:  100,
		ElapsedTime: time.Since(start),
	})
	return result, nil
}

// restoreAfterCalibration returns the controller to run mode. It runs even
// when ctx is already cancelled and only logs failures.
func (s *Session) restoreAfterCalibration(ctx context.Context) {
	const op = "calibrate restore"

	ctx = context.WithoutCancel(ctx)
	if err := s.runMacro(ctx, op, protocol.CalibrateRestoreTemplate.MustRender()); err != nil {
		s.logError("restore failed", "error", err)
		return
	}
	// Wake once more so the controller resumes normal reporting. The
	// acknowledgment is consumed here so the next operation's handshake
	// cannot mistake it for its own.
	if err := s.handshake(ctx, op); err != nil {
		s.logError("restore failed", "error", err)
	}
}
