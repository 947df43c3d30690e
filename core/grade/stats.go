package grade

import (
	"fmt"
	"math"
)

// Summary aggregates one student's totals for a period.
type Summary struct {
	TotalSubjects int     `json:"total_subjects"`
	TotalMarks    float64 `json:"total_marks"`
	AverageScore  float64 `json:"average_score"`
	Grade         Grade   `json:"grade"`
	Remark        string  `json:"remark"`
}

// Statistics aggregates a class's totals for one subject and period.
type Statistics struct {
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
	Highest  float64 `json:"highest"`
	Lowest   float64 `json:"lowest"`
	PassRate float64 `json:"pass_rate"` // percentage of totals >= PassMark
}

// Round2 rounds to 2 decimal places, matching the precision scores are reported in.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Ordinal formats a 1-based rank: 1st, 2nd, 3rd, 4th... 11th-13th are always "th".
func Ordinal(n int) string {
	suffix := "th"
	if v := n % 100; v < 11 || v > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// ClassPosition ranks a student's total within the class.
// Rank is 1 + the number of strictly greater totals, so ties share a position.
func ClassPosition(studentTotal float64, allTotals []float64) string {
	rank := 1
	for _, t := range allTotals {
		if t > studentTotal {
			rank++
		}
	}
	return Ordinal(rank)
}

// ClassStatistics computes count/average/highest/lowest/pass-rate over totals.
// Empty input yields the zero Statistics.
func ClassStatistics(totals []float64) Statistics {
	if len(totals) == 0 {
		return Statistics{}
	}

	var sum float64
	highest, lowest := totals[0], totals[0]
	var passed int
	for _, t := range totals {
		sum += t
		if t > highest {
			highest = t
		}
		if t < lowest {
			lowest = t
		}
		if t >= PassMark {
			passed++
		}
	}
	n := float64(len(totals))
	return Statistics{
		Count:    len(totals),
		Average:  Round2(sum / n),
		Highest:  Round2(highest),
		Lowest:   Round2(lowest),
		PassRate: Round2(float64(passed) / n * 100),
	}
}

// OverallSummary aggregates one student's totals; the grade and remark derive
// from the average, not from per-subject grades. Empty input yields the
// sentinel summary (0 subjects, grade "N/A").
func OverallSummary(totals []float64) Summary {
	if len(totals) == 0 {
		return Summary{Grade: "N/A", Remark: "N/A"}
	}

	var sum float64
	for _, t := range totals {
		sum += t
	}
	avg := sum / float64(len(totals))
	return Summary{
		TotalSubjects: len(totals),
		TotalMarks:    Round2(sum),
		AverageScore:  Round2(avg),
		Grade:         GradeOf(avg),
		Remark:        PerformanceComment(avg),
	}
}
