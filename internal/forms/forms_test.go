package forms

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		form any
		want Errors
	}{
		{"login ok", &Login{Email: "a@b.co", Password: "secret"}, nil},
		{"login empty", &Login{}, Errors{
			"email":    "Email is required",
			"password": "Password is required",
		}},
		{"login bad email", &Login{Email: "a@b", Password: "secret"}, Errors{
			"email": "Please enter a valid email address",
		}},
		{"login short password", &Login{Email: "a@b.co", Password: "abc"}, Errors{
			"password": "Password must be at least 6 characters",
		}},
		{"school login three chars", &SchoolLogin{Email: "a@b.co", Password: "abc"}, nil},
		{"school login short password", &SchoolLogin{Email: "a@b.co", Password: "ab"}, Errors{
			"password": "Password must be at least 3 characters",
		}},
		{"school login bad email", &SchoolLogin{Email: "a@b", Password: "abc"}, Errors{
			"email": "Please enter a valid email address",
		}},
		{"register mismatch", &Register{Username: "ana", Email: "a@b.co", Password: "secret1", RepeatPassword: "secret2"}, Errors{
			"repeatPassword": "Passwords do not match",
		}},
		{"register blank username", &Register{Username: "  ", Email: "a@b.co", Password: "secret1", RepeatPassword: "secret1"}, Errors{
			"username": "Username is required",
		}},
		{"class ok", &Class{Name: "L1", StudentCount: "30"}, nil},
		{"class negative", &Class{Name: "L1", StudentCount: "-3"}, Errors{
			"nbreEtud": "Number of students must be a non-negative number",
		}},
		{"class text count", &Class{Name: "L1", StudentCount: "thirty"}, Errors{
			"nbreEtud": "Number of students must be a non-negative number",
		}},
		{"student bad date", &Student{LastName: "Ben", FirstName: "Ali", BirthDate: "04/03/2001"}, Errors{
			"dateNais": "Birth date must be a date (YYYY-MM-DD)",
		}},
		{"student ok", &Student{LastName: "Ben", FirstName: "Ali", BirthDate: "2001-03-04"}, nil},
		{"subject empty", &Subject{}, Errors{
			"intMat":      "Title is required",
			"description": "Description is required",
		}},
		{"group", &Group{Name: "Bio"}, nil},
		{"note blank content", &Note{Title: "Reminder", Content: "\n"}, Errors{
			"content": "Content is required",
		}},
		{"blank message", &Message{Content: "   "}, Errors{
			"content": "Message is required",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			got := FieldErrors(err)
			if len(got) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
			for field, msg := range tt.want {
				if got[field] != msg {
					t.Errorf("%s = %q, want %q", field, got[field], msg)
				}
			}
		})
	}
}

func TestErrorsMessage(t *testing.T) {
	err := Validate(&Login{})
	var fe Errors
	if !errors.As(err, &fe) {
		t.Fatalf("error type = %T", err)
	}
	want := "email: Email is required; password: Password is required"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestClassCount(t *testing.T) {
	if got := (Class{StudentCount: " 42 "}).Count(); got != 42 {
		t.Errorf("Count() = %d, want 42", got)
	}
}
