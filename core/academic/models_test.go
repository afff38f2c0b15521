package academic

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSyllabus_JSONKeepsSubjectOrder(t *testing.T) {
	raw := `{"Zoology":[{"id":"z-1","title":"Cells","completed":true,"deadline":"2024-05-20"}],"Art":[],"Maths":[{"id":"m-1","title":"Sets","completed":false,"deadline":null}]}`

	var syl Syllabus
	if err := json.Unmarshal([]byte(raw), &syl); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := []string{"Zoology", "Art", "Maths"}
	got := syl.Subjects()
	if len(got) != len(want) {
		t.Fatalf("Subjects() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Subjects() = %v, want %v", got, want)
		}
	}

	topics, _ := syl.Topics("Zoology")
	if d := topics[0].Deadline; d == nil || !d.Equal(NewDate(2024, time.May, 20).Time) {
		t.Errorf("deadline = %v, want 2024-05-20", d)
	}

	data, err := json.Marshal(syl)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != raw {
		t.Errorf("Marshal() = %s, want %s", data, raw)
	}
}

func TestSyllabus_UnmarshalRejectsNonObject(t *testing.T) {
	var syl Syllabus
	if err := json.Unmarshal([]byte(`["Maths"]`), &syl); err == nil {
		t.Error("Unmarshal() error = nil, want error")
	}
}

func TestQuestion_UnmarshalLegacyShape(t *testing.T) {
	var q Question
	if err := json.Unmarshal([]byte(`{"q":"Which is a loop?","options":["if","for"],"answer":1}`), &q); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if q.Text != "Which is a loop?" || q.CorrectIndex != 1 || len(q.Options) != 2 {
		t.Errorf("Unmarshal() = %+v", q)
	}
	if !q.Valid() {
		t.Error("Valid() = false, want true")
	}
}

func Test_percent(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13}, // 12.5
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := percent(tt.part, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.want)
		}
	}
}
