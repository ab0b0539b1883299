package main

type Todo struct {
	Id        int    `json:"id" db:"id"`
	Title     string `json:"title" db:"title"`
	Completed bool   `json:"completed" db:"completed"`
}

// TodoInput carries the fields a client may send. Nil pointers were absent
// from the body, which is what makes update a merge.
type TodoInput struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}
