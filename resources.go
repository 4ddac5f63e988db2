package fitgate

import (
	"context"
	"fmt"
	"net/http"
)

// Workouts lists the account's logged workouts, newest first.
func (c *Client) Workouts(ctx context.Context) ([]Workout, error) {
	var out []Workout
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/workouts"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Workout fetches a single workout by ID.
func (c *Client) Workout(ctx context.Context, id int64) (*Workout, error) {
	var out Workout
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/workouts/%d", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWorkout logs a new workout and returns it with server-assigned fields.
func (c *Client) CreateWorkout(ctx context.Context, w Workout) (*Workout, error) {
	var out Workout
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/workouts", Body: w}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWorkout replaces an existing workout.
func (c *Client) UpdateWorkout(ctx context.Context, id int64, w Workout) (*Workout, error) {
	var out Workout
	err := c.Do(ctx, Request{Method: http.MethodPut, Path: fmt.Sprintf("/workouts/%d", id), Body: w}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteWorkout removes a workout.
func (c *Client) DeleteWorkout(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf("/workouts/%d", id)}, nil)
}

// NutritionEntries lists the account's logged meals.
func (c *Client) NutritionEntries(ctx context.Context) ([]NutritionEntry, error) {
	var out []NutritionEntry
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/nutrition"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NutritionEntry fetches a single meal entry by ID.
func (c *Client) NutritionEntry(ctx context.Context, id int64) (*NutritionEntry, error) {
	var out NutritionEntry
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/nutrition/%d", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateNutritionEntry logs a meal.
func (c *Client) CreateNutritionEntry(ctx context.Context, e NutritionEntry) (*NutritionEntry, error) {
	var out NutritionEntry
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/nutrition", Body: e}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNutritionEntry replaces a meal entry.
func (c *Client) UpdateNutritionEntry(ctx context.Context, id int64, e NutritionEntry) (*NutritionEntry, error) {
	var out NutritionEntry
	err := c.Do(ctx, Request{Method: http.MethodPut, Path: fmt.Sprintf("/nutrition/%d", id), Body: e}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNutritionEntry removes a meal entry.
func (c *Client) DeleteNutritionEntry(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf("/nutrition/%d", id)}, nil)
}

// Goals lists the account's fitness goals.
func (c *Client) Goals(ctx context.Context) ([]Goal, error) {
	var out []Goal
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/goals"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Goal fetches a single goal by ID.
func (c *Client) Goal(ctx context.Context, id int64) (*Goal, error) {
	var out Goal
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/goals/%d", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGoal records a new goal.
func (c *Client) CreateGoal(ctx context.Context, g Goal) (*Goal, error) {
	var out Goal
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/goals", Body: g}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGoal replaces a goal, including its progress and achieved flag.
func (c *Client) UpdateGoal(ctx context.Context, id int64, g Goal) (*Goal, error) {
	var out Goal
	err := c.Do(ctx, Request{Method: http.MethodPut, Path: fmt.Sprintf("/goals/%d", id), Body: g}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGoal removes a goal.
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf("/goals/%d", id)}, nil)
}
