package grade

import "testing"

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{10, "10th"}, {11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"}, {24, "24th"},
		{101, "101st"}, {111, "111th"}, {112, "112th"}, {113, "113th"}, {121, "121st"},
	}
	for _, tt := range tests {
		if got := Ordinal(tt.n); got != tt.want {
			t.Errorf("Ordinal(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestClassPosition(t *testing.T) {
	totals := []float64{90, 80, 80, 70, 60}
	tests := []struct {
		total float64
		want  string
	}{
		{90, "1st"},
		{80, "2nd"}, // ties share the higher position
		{70, "4th"},
		{60, "5th"},
		{50, "6th"}, // not in the class set; ranks below everyone
	}
	for _, tt := range tests {
		if got := ClassPosition(tt.total, totals); got != tt.want {
			t.Errorf("ClassPosition(%v) = %q, want %q", tt.total, got, tt.want)
		}
	}
}

func TestClassStatistics(t *testing.T) {
	t.Run("empty input yields zeroes", func(t *testing.T) {
		if got := ClassStatistics(nil); got != (Statistics{}) {
			t.Errorf("ClassStatistics(nil) = %+v, want zero value", got)
		}
	})

	t.Run("mixed totals", func(t *testing.T) {
		got := ClassStatistics([]float64{90, 30, 60})
		want := Statistics{Count: 3, Average: 60, Highest: 90, Lowest: 30, PassRate: 66.67}
		if got != want {
			t.Errorf("ClassStatistics() = %+v, want %+v", got, want)
		}
	})

	t.Run("all passed", func(t *testing.T) {
		got := ClassStatistics([]float64{40, 50})
		if got.PassRate != 100 {
			t.Errorf("PassRate = %v, want 100", got.PassRate)
		}
	})
}

func TestOverallSummary(t *testing.T) {
	t.Run("empty input yields sentinel", func(t *testing.T) {
		got := OverallSummary(nil)
		if got.TotalSubjects != 0 || got.Grade != "N/A" || got.Remark != "N/A" {
			t.Errorf("OverallSummary(nil) = %+v, want sentinel summary", got)
		}
	})

	t.Run("grade derives from the average", func(t *testing.T) {
		got := OverallSummary([]float64{80, 70, 90})
		if got.TotalSubjects != 3 {
			t.Errorf("TotalSubjects = %d, want 3", got.TotalSubjects)
		}
		if got.TotalMarks != 240 {
			t.Errorf("TotalMarks = %v, want 240", got.TotalMarks)
		}
		if got.AverageScore != 80 {
			t.Errorf("AverageScore = %v, want 80", got.AverageScore)
		}
		if got.Grade != A {
			t.Errorf("Grade = %v, want A", got.Grade)
		}
		if got.Remark != PerformanceComment(80) {
			t.Errorf("Remark = %q, want the 80-band comment", got.Remark)
		}
	})
}
