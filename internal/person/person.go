package person

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"marvelous/internal/comic"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	ErrNotFound      = errors.New("person not found")
	ErrAlreadyExists = errors.New("person with this cpf or email already exists")
)

// DateLayout is the birthday format used on the wire (dd/MM/yyyy).
const DateLayout = "02/01/2006"

// Date is a calendar day rendered as dd/MM/yyyy.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Person struct {
	ID       int64         `json:"id"`
	CPF      string        `json:"cpf"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Birthday Date          `json:"birthday"`
	Comics   []comic.Comic `json:"comics"`
}

// Validate checks the fields a person must have before being stored.
func (p Person) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.CPF,
			validation.Required,
			validation.By(cpfRule),
		),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
		validation.Field(&p.Birthday, validation.By(func(value any) error {
			if d, _ := value.(Date); d.IsZero() {
				return errors.New("cannot be blank")
			}
			return nil
		})),
	)
}

func cpfRule(value any) error {
	s, _ := value.(string)
	if s == "" || ValidCPF(s) {
		return nil
	}
	return errors.New("invalid CPF")
}

// ValidCPF checks a Brazilian taxpayer number, with or without the usual
// dots and dash.
func ValidCPF(s string) bool {
	digits := make([]int, 0, 11)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}

	same := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

// CompleteCPF appends both check digits to a nine digit base.
func CompleteCPF(base string) (string, error) {
	if len(base) != 9 {
		return "", fmt.Errorf("cpf base must have 9 digits, got %d", len(base))
	}
	digits := make([]int, 0, 11)
	for _, r := range base {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("cpf base %q is not numeric", base)
		}
		digits = append(digits, int(r-'0'))
	}
	digits = append(digits, checkDigit(digits))
	digits = append(digits, checkDigit(digits))

	var sb strings.Builder
	for _, d := range digits {
		sb.WriteByte(byte('0' + d))
	}
	return sb.String(), nil
}

func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
