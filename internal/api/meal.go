package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/stolujeme/stolu-cli/internal/envelope"
	"github.com/stolujeme/stolu-cli/internal/session"
	"github.com/stolujeme/stolu-cli/internal/transport"
)

// ErrInvalidUUID is returned before any request when an identifier is not a
// UUID.
var ErrInvalidUUID = errors.New("api: invalid uuid")

// Meal is a meal profile.
type Meal struct {
	UUID        string   `json:"uuid" yaml:"uuid"`
	Canteen     string   `json:"canteen" yaml:"canteen"`
	Course      string   `json:"course" yaml:"course"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Names       []string `json:"names" yaml:"names"`
	Photos      []string `json:"photos" yaml:"photos"`

	UserRating   float64 `json:"userRating" yaml:"user_rating"`
	GlobalRating float64 `json:"globalRating" yaml:"global_rating"`
}

// Name returns the primary name, or "" when the meal has none.
func (m *Meal) Name() string {
	if len(m.Names) == 0 {
		return ""
	}

	return m.Names[0]
}

// IsNotFound reports whether out is the server's "no such meal" error.
func IsNotFound(out session.Outcome) bool {
	return out.ErrorType() == envelope.TypeMealUUIDInvalid
}

// Meal fetches a meal profile. The Meal is nil unless the outcome is a
// success.
func (c *Client) Meal(ctx context.Context, mealUUID string) (*Meal, session.Outcome, error) {
	if err := checkUUID(mealUUID); err != nil {
		return nil, session.Outcome{}, err
	}

	path := c.mealPath(mealUUID)

	out := c.exec.Execute(ctx, func(ctx context.Context, t *transport.Transport) (*transport.Response, error) {
		return t.Get(ctx, path)
	})
	if !out.OK() {
		return nil, out, nil
	}

	return parseMeal(mealUUID, out.Success.Lookup("meal")), out, nil
}

// MealPhoto downloads one photo of a meal as raw bytes.
func (c *Client) MealPhoto(ctx context.Context, mealUUID, photoUUID string) ([]byte, session.Outcome, error) {
	if err := checkUUID(mealUUID); err != nil {
		return nil, session.Outcome{}, err
	}

	if err := checkUUID(photoUUID); err != nil {
		return nil, session.Outcome{}, err
	}

	path := c.mealPath(mealUUID, "photos", photoUUID, "view")

	data, out := c.exec.Fetch(ctx, func(ctx context.Context, t *transport.Transport) (*transport.Response, error) {
		return t.Get(ctx, path)
	})

	return data, out, nil
}

func checkUUID(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUUID, s)
	}

	return nil
}

func parseMeal(id string, m gjson.Result) *Meal {
	meal := &Meal{
		UUID:         id,
		Canteen:      m.Get("canteen").String(),
		Course:       m.Get("course").String(),
		Description:  m.Get("description").String(),
		UserRating:   m.Get("ratings.user").Float(),
		GlobalRating: m.Get("ratings.global").Float(),
	}

	for _, n := range m.Get("names").Array() {
		meal.Names = append(meal.Names, n.String())
	}

	for _, p := range m.Get("photos").Array() {
		meal.Photos = append(meal.Photos, p.String())
	}

	return meal
}
