package models

// CreateProfileRequest is the body of POST /CreateProfile.
type CreateProfileRequest struct {
	UserName     string `json:"userName"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	MobileNumber string `json:"mobileNumber"`
	City         string `json:"city"`
	Password     string `json:"password"`
}

// MissingField returns the json name of the first empty required field, or "".
func (r CreateProfileRequest) MissingField() string {
	fields := []struct{ name, value string }{
		{"userName", r.UserName},
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"emailAddress", r.EmailAddress},
		{"mobileNumber", r.MobileNumber},
		{"city", r.City},
		{"password", r.Password},
	}
	for _, f := range fields {
		if f.value == "" {
			return f.name
		}
	}
	return ""
}

type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type CreateTodoRequest struct {
	Subject     string `json:"ToDoSubject"`
	Description string `json:"ToDoDescription"`
}

type UpdateTodoRequest struct {
	ID          string `json:"_id"`
	Subject     string `json:"ToDoSubject"`
	Description string `json:"ToDoDescription"`
}

type UpdateTodoStatusRequest struct {
	ID     string `json:"_id"`
	Status string `json:"ToDoStatus"`
}

type RemoveTodoRequest struct {
	ID string `json:"_id"`
}

type FilterByStatusRequest struct {
	UserName string `json:"UserName"`
	Status   string `json:"ToDoStatus"`
}

type FilterByDateRequest struct {
	Date string `json:"date"`
}

// Response is the status envelope shared by most endpoints.
type Response struct {
	Status  string `json:"status"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}
