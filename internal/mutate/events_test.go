package mutate

import (
	"errors"
	"testing"

	"github.com/leonbytyqi1709-sketch/bycore/internal/model"
)

func TestCreateEvent_AppendsWithDefaults(t *testing.T) {
	res, err := CreateEvent(nil, EventInput{Title: "a", Date: "2025-06-02", StartTime: "09:00"}, t0)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	res, err = CreateEvent(res.Events, EventInput{Title: "b", Date: "2025-06-01"}, t0)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if res.Events[0].Title != "a" || res.Events[1].Title != "b" {
		t.Fatalf("expected append order, got %+v", res.Events)
	}
	if res.Events[0].Color != model.ColorBlue {
		t.Fatalf("expected default blue, got %q", res.Events[0].Color)
	}
	if res.Events[0].ID == res.Events[1].ID {
		t.Fatalf("expected distinct ids")
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	cases := []struct {
		in    EventInput
		field string
	}{
		{EventInput{Title: " ", Date: "2025-01-01"}, "title"},
		{EventInput{Title: "x", Date: ""}, "date"},
		{EventInput{Title: "x", Date: "2025-01-01", StartTime: "9:00"}, "startTime"},
		{EventInput{Title: "x", Date: "2025-01-01", EndTime: "25:00"}, "endTime"},
		{EventInput{Title: "x", Date: "2025-01-01", Color: "pink"}, "color"},
	}
	for _, tc := range cases {
		res, err := CreateEvent(nil, tc.in, t0)
		var ve ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("%+v: expected %s ValidationError, got %v", tc.in, tc.field, err)
		}
		if len(res.Events) != 0 {
			t.Fatalf("expected nothing created")
		}
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	res, _ := CreateEvent(nil, EventInput{Title: "a", Date: "2025-06-02"}, t0)
	id := res.Events[0].ID
	created := res.Events[0].Created

	res, err := UpdateEvent(res.Events, id, EventInput{Title: "b", Date: "2025-06-03", StartTime: "10:00", EndTime: "11:00", Color: model.ColorRed})
	if err != nil || !res.Changed {
		t.Fatalf("UpdateEvent: changed=%v err=%v", res.Changed, err)
	}
	got := res.Events[0]
	if got.Title != "b" || got.Date != "2025-06-03" || got.Color != model.ColorRed || !got.Created.Equal(created) {
		t.Fatalf("unexpected event: %+v", got)
	}

	res = DeleteEvent(res.Events, id)
	if !res.Changed || len(res.Events) != 0 {
		t.Fatalf("expected deleted, got %+v", res.Events)
	}
}
