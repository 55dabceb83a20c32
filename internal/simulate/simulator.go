// Package simulate runs the day-by-day event simulation over an entity
// collection and emits the flat event stream.
//
// Every main-entity instance moves through Unborn -> Active -> Churned. Birth
// fires the spec's initial event; each active day then evaluates the configured
// events in spec order. Lifecycle state lives here and never leaks into the
// instance records.
package simulate

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gyaneshwarpardhi/synthdata/internal/dataset"
	"github.com/gyaneshwarpardhi/synthdata/internal/entity"
	"github.com/gyaneshwarpardhi/synthdata/internal/fake"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
)

const (
	daysPerYear = 365
	// DefaultMaxDays bounds the simulated window when Options.MaxDays is unset.
	DefaultMaxDays = 3650
)

// Options tunes a Simulator.
type Options struct {
	// MaxDays caps the simulated window. Zero means DefaultMaxDays; negative
	// disables the cap.
	MaxDays int
}

// Simulator emits event records for one DataSpec.
type Simulator struct {
	spec   *spec.DataSpec
	logger *slog.Logger
	opts   Options
}

// New creates a Simulator. A nil logger uses slog.Default.
func New(s *spec.DataSpec, logger *slog.Logger, opts Options) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxDays == 0 {
		opts.MaxDays = DefaultMaxDays
	}
	return &Simulator{spec: s, logger: logger, opts: opts}
}

type state int

const (
	unborn state = iota
	active
	churned
)

// lifecycle is the simulator-private view of one main-entity instance.
type lifecycle struct {
	birthDay int
	born     time.Time
	state    state
}

// Window returns the first simulated day and the number of days covered by
// timeRange: from Jan 1 of the first year for (last-first+1)*365 days. An
// unparseable range falls back to the year of fallback.
func Window(timeRange []string, fallback time.Time) (time.Time, int) {
	first, ok1 := parseYear(timeRange, 0)
	last, ok2 := parseYear(timeRange, len(timeRange)-1)
	if !ok1 {
		first = fallback.Year()
	}
	if !ok2 || last < first {
		last = first
	}
	start := time.Date(first, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, (last - first + 1) * daysPerYear
}

func parseYear(timeRange []string, i int) (int, bool) {
	if i < 0 || i >= len(timeRange) {
		return 0, false
	}
	s := strings.TrimSpace(timeRange[i])
	if len(s) > 4 {
		s = s[:4]
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1 {
		return 0, false
	}
	return y, true
}

// Run simulates the window described by timeRange and returns at most rowCount
// records in emission order.
func (sim *Simulator) Run(c entity.Collection, rowCount int, timeRange []string, src *fake.Source) dataset.Stream {
	main := c.Main()
	if rowCount <= 0 || main == nil || len(main.Instances) == 0 || sim.spec.Simulation == nil || sim.spec.EventStreamTable == nil {
		return dataset.Stream{}
	}

	start, days := Window(timeRange, src.Now())
	if sim.opts.MaxDays > 0 && days > sim.opts.MaxDays {
		sim.logger.Warn("simulation window truncated", "requested_days", days, "max_days", sim.opts.MaxDays)
		days = sim.opts.MaxDays
	}

	lives := make([]lifecycle, len(main.Instances))
	for i := range lives {
		d := src.IntN(days)
		lives[i] = lifecycle{birthDay: d, born: start.AddDate(0, 0, d)}
	}

	b := &builder{sim: sim, coll: c, main: main.Name, src: src}
	stream := make(dataset.Stream, 0, rowCount)

	for day := 0; day < days && len(stream) < rowCount; day++ {
		date := start.AddDate(0, 0, day)
		for i, inst := range main.Instances {
			if len(stream) >= rowCount {
				break
			}
			lc := &lives[i]
			if lc.state == churned || (lc.state == unborn && day != lc.birthDay) {
				continue
			}
			clk := &clock{day: date, src: src}

			if lc.state == unborn {
				lc.state = active
				if name := sim.spec.Simulation.InitialEvent; name != "" {
					stream = append(stream, b.record(name, sim.spec.Simulation.Event(name), inst, clk.next()))
				} else {
					sim.logger.Debug("initial_event is empty, birth emits no record")
				}
			}

			for _, ev := range sim.spec.Simulation.Events {
				if len(stream) >= rowCount {
					break
				}
				fired, churn := sim.fires(ev, inst, lc, day, date, src)
				if !fired {
					continue
				}
				stream = append(stream, b.record(ev.Name, &ev, inst, clk.next()))
				if churn {
					lc.state = churned
					break
				}
			}
		}
	}

	if len(stream) > rowCount {
		stream = stream[:rowCount]
	}
	return stream
}

// fires decides whether ev happens today for the instance. The second result
// reports a churn.
func (sim *Simulator) fires(ev spec.EventSpec, inst dataset.Record, lc *lifecycle, day int, date time.Time, src *fake.Source) (bool, bool) {
	switch t := ev.Trigger.(type) {
	case spec.RecurringTrigger:
		if t.On == "" {
			sim.logger.Debug("recurring event without frequency.on skipped", "event", ev.Name)
			return false, false
		}
		if day == lc.birthDay {
			return false, false
		}
		return due(cadence(t.On, inst), lc.born, date), false
	case spec.RandomTrigger:
		if !t.HasAvg {
			sim.logger.Debug("random event without average skipped", "event", ev.Name)
			return false, false
		}
		return src.Chance(t.AvgPerMonth / 30), false
	case spec.ChurnTrigger:
		if !t.HasRate {
			sim.logger.Debug("churn event without monthly_rate skipped", "event", ev.Name)
			return false, false
		}
		hit := src.Chance(t.MonthlyRate / 30)
		return hit, hit
	default:
		sim.logger.Debug("unknown event type skipped", "event", ev.Name)
		return false, false
	}
}

// clock hands out strictly increasing instants within one simulated day.
type clock struct {
	day     time.Time
	cur     time.Time
	started bool
	src     *fake.Source
}

func (c *clock) next() time.Time {
	if !c.started {
		c.started = true
		// First event lands in the first six hours so later 90-minute steps stay inside the day.
		c.cur = c.day.Add(time.Duration(c.src.IntN(6*3600)) * time.Second)
		return c.cur
	}
	c.cur = c.cur.Add(time.Minute + time.Duration(c.src.IntN(90*60))*time.Second)
	return c.cur
}
