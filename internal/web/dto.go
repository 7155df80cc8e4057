package web

import (
	"time"

	"alarmboard/internal/board"
	"alarmboard/internal/model"
)

// alarmsResponse is the JSON shape of /api/alarms.
type alarmsResponse struct {
	Now          time.Time      `json:"now"`
	Date         string         `json:"date"`
	Loaded       bool           `json:"loaded"`
	Found        bool           `json:"found"`
	DayName      string         `json:"day_name,omitempty"`
	Alarms       []countdownDTO `json:"alarms"`
	EmptyMessage string         `json:"empty_message,omitempty"`
	Message      string         `json:"message,omitempty"`
	TickMillis   int64          `json:"tick_ms"`
}

type countdownDTO struct {
	Label            string    `json:"label"`
	Time             string    `json:"time"`
	At               time.Time `json:"at"`
	Passed           bool      `json:"passed"`
	Soonest          bool      `json:"soonest"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Countdown        string    `json:"countdown"`
}

func newAlarmsResponse(snap board.Snapshot, tick time.Duration) alarmsResponse {
	resp := alarmsResponse{
		Now:        snap.Now,
		Date:       model.DateOf(snap.Now).String(),
		Loaded:     snap.Loaded,
		Found:      snap.Found,
		DayName:    snap.Today.DayName,
		Alarms:     make([]countdownDTO, 0, len(snap.Countdowns)),
		Message:    snap.Message,
		TickMillis: tick.Milliseconds(),
	}
	for _, c := range snap.Countdowns {
		dto := countdownDTO{
			Label:     c.Alarm.Label,
			Time:      c.Alarm.At.Format("15:04"),
			At:        c.Alarm.At,
			Passed:    c.Passed,
			Soonest:   c.IsSoonest,
			Countdown: c.String(),
		}
		if !c.Passed {
			dto.RemainingSeconds = int64(c.Remaining / time.Second)
		}
		resp.Alarms = append(resp.Alarms, dto)
	}
	if snap.Empty() {
		resp.EmptyMessage = board.NoAlarmsMessage
	}
	return resp
}

// scheduleResponse is the JSON shape of /api/schedule.
type scheduleResponse struct {
	Loaded   bool      `json:"loaded"`
	LoadedAt time.Time `json:"loaded_at"`
	Days     []dayDTO  `json:"days"`
}

type dayDTO struct {
	Date    string     `json:"date,omitempty"`
	RawDate string     `json:"raw_date"`
	Valid   bool       `json:"valid"`
	DayName string     `json:"day_name"`
	Alarms  []alarmDTO `json:"alarms"`
}

type alarmDTO struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}

func newScheduleResponse(days []model.DaySchedule, loaded bool, loadedAt time.Time) scheduleResponse {
	resp := scheduleResponse{
		Loaded:   loaded,
		LoadedAt: loadedAt,
		Days:     make([]dayDTO, 0, len(days)),
	}
	for _, d := range days {
		dto := dayDTO{
			RawDate: d.RawDate,
			Valid:   d.Date.Valid(),
			DayName: d.DayName,
			Alarms:  make([]alarmDTO, 0, len(d.Alarms)),
		}
		if dto.Valid {
			dto.Date = d.Date.String()
		}
		for _, a := range d.Alarms {
			dto.Alarms = append(dto.Alarms, alarmDTO{Time: a.Clock(), Label: a.Label})
		}
		resp.Days = append(resp.Days, dto)
	}
	return resp
}
