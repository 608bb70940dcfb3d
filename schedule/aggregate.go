package schedule

import (
	"math"
	"sort"
	"time"
)

// Stat aggregates classified occurrences over one grouping bucket. Only
// terminal statuses count toward Total and Rate; upcoming/due_now occurrences
// are reported separately as Remaining.
type Stat struct {
	Date       string `json:"date,omitempty"`        // set for daily aggregation, YYYY-MM-DD
	MedicineID uint   `json:"medicine_id,omitempty"` // set for per-medicine aggregation
	Taken      int    `json:"taken"`
	Skipped    int    `json:"skipped"`
	Missed     int    `json:"missed"`
	Remaining  int    `json:"remaining"`
	Total      int    `json:"total"`
	Rate       int    `json:"rate"`
}

const statDateLayout = "2006-01-02"

// Aggregate folds all classified occurrences into a single stat.
func Aggregate(classified []Classified) Stat {
	var s Stat
	for _, c := range classified {
		s.add(c.Status)
	}
	s.finish()
	return s
}

// AggregateDaily produces one stat per calendar date in [start, end]
// inclusive, each using only that date's occurrences. An inverted range
// yields an empty slice.
func AggregateDaily(classified []Classified, start, end time.Time) []Stat {
	byDate := map[string]*Stat{}
	for _, c := range classified {
		key := DateOf(c.Scheduled).Format(statDateLayout)
		s, ok := byDate[key]
		if !ok {
			s = &Stat{Date: key}
			byDate[key] = s
		}
		s.add(c.Status)
	}

	var out []Stat
	for d := DateOf(start); !d.After(DateOf(end)); d = d.AddDate(0, 0, 1) {
		key := d.Format(statDateLayout)
		s, ok := byDate[key]
		if !ok {
			s = &Stat{Date: key}
		}
		s.finish()
		out = append(out, *s)
	}
	return out
}

// AggregateByMedicine groups all classified occurrences by medicine across
// the full range, sorted by medicine id.
func AggregateByMedicine(classified []Classified) []Stat {
	byMed := map[uint]*Stat{}
	for _, c := range classified {
		s, ok := byMed[c.MedicineID]
		if !ok {
			s = &Stat{MedicineID: c.MedicineID}
			byMed[c.MedicineID] = s
		}
		s.add(c.Status)
	}

	out := make([]Stat, 0, len(byMed))
	for _, s := range byMed {
		s.finish()
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MedicineID < out[j].MedicineID })
	return out
}

// Streak counts consecutive fully-adherent calendar days ending at today. A
// day counts only when it has at least one scheduled occurrence and none of
// them is missed or skipped; the walk stops at the first day violating this.
func Streak(classified []Classified, today time.Time) int {
	type dayTally struct {
		scheduled int
		broken    bool
	}
	byDate := map[string]*dayTally{}
	for _, c := range classified {
		key := DateOf(c.Scheduled).Format(statDateLayout)
		t, ok := byDate[key]
		if !ok {
			t = &dayTally{}
			byDate[key] = t
		}
		t.scheduled++
		if c.Status == StatusMissed || c.Status == StatusSkipped {
			t.broken = true
		}
	}

	streak := 0
	for d := DateOf(today); ; d = d.AddDate(0, 0, -1) {
		t, ok := byDate[d.Format(statDateLayout)]
		if !ok || t.scheduled == 0 || t.broken {
			break
		}
		streak++
	}
	return streak
}

func (s *Stat) add(status Status) {
	switch status {
	case StatusTaken:
		s.Taken++
	case StatusSkipped:
		s.Skipped++
	case StatusMissed:
		s.Missed++
	default:
		s.Remaining++
	}
}

// finish derives Total and Rate. With nothing terminal yet the rate is 100 by
// convention: there is nothing to have failed.
func (s *Stat) finish() {
	s.Total = s.Taken + s.Skipped + s.Missed
	if s.Total == 0 {
		s.Rate = 100
		return
	}
	s.Rate = int(math.Round(float64(s.Taken) / float64(s.Total) * 100))
}
