package models

import "time"

// Статусы результата прогноза.
const (
	ResultPending = "PENDING"
	ResultWon     = "WON"
	ResultLost    = "LOST"
)

// Prediction представляет спортивный прогноз. Поле Analysis — платный
// контент: в списках для не-premium пользователей оно обнуляется.
type Prediction struct {
	ID             int        `json:"id"`
	HomeTeam       string     `json:"home_team"`
	AwayTeam       string     `json:"away_team"`
	League         string     `json:"league"`
	MatchDate      time.Time  `json:"match_date"`
	PredictionType string     `json:"prediction_type"`
	PredictionText string     `json:"prediction_text"`
	Odds           float64    `json:"odds"`
	Confidence     int        `json:"confidence"`
	Analysis       *string    `json:"analysis"`
	IsPremium      bool       `json:"is_premium"`
	ResultStatus   string     `json:"result_status"`
	IsActive       bool       `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Redact обнуляет платные поля прогноза для выдачи не-premium пользователю.
func (p *Prediction) Redact() {
	p.Analysis = nil
}

// Coupon представляет купон — подборку из нескольких прогнозов.
// Description и анализ вложенных прогнозов — платный контент.
type Coupon struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Description  *string       `json:"description"`
	TotalOdds    float64       `json:"total_odds"`
	IsPremium    bool          `json:"is_premium"`
	ResultStatus string        `json:"result_status"`
	IsActive     bool          `json:"-"`
	Predictions  []*Prediction `json:"predictions"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Redact обнуляет платные поля купона и всех его прогнозов.
func (c *Coupon) Redact() {
	c.Description = nil
	for _, p := range c.Predictions {
		p.Redact()
	}
}

// ContentFilter параметры фильтрации списков прогнозов и купонов.
type ContentFilter struct {
	League       *string
	IsPremium    *bool
	ResultStatus *string
}
