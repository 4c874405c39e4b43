package actions

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/orbitcrm/orbit-backend/internal/repository"
)

// csv column aliases -> canonical field
var csvColumns = map[string]string{
	"first_name":   "first",
	"firstname":    "first",
	"first":        "first",
	"last_name":    "last",
	"lastname":     "last",
	"last":         "last",
	"company":      "company",
	"organization": "company",
	"role":         "role",
	"title":        "role",
	"role_title":   "role",
	"linkedin":     "linkedin",
	"linkedin_url": "linkedin",
	"email":        "email",
	"phone":        "phone",
}

// parseContactsCSV maps header-addressed CSV text to minimal contact
// inputs. Rows without both first and last name are skipped, not fatal.
func parseContactsCSV(text string) ([]repository.ContactInput, int, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, err
	}

	fields := make(map[int]string, len(header))
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if canonical, ok := csvColumns[key]; ok {
			fields[i] = canonical
		}
	}

	var inputs []repository.ContactInput
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		row := make(map[string]string, len(fields))
		for i, value := range record {
			if name, ok := fields[i]; ok {
				row[name] = strings.TrimSpace(value)
			}
		}

		if row["first"] == "" || row["last"] == "" {
			skipped++
			continue
		}

		in := repository.ContactInput{
			FirstName:   row["first"],
			LastName:    row["last"],
			Company:     row["company"],
			RoleTitle:   row["role"],
			LinkedInURL: row["linkedin"],
			Status:      "Active",
		}
		if row["email"] != "" {
			in.Emails = []repository.MethodEntry{{Value: row["email"]}}
		}
		if row["phone"] != "" {
			in.Phones = []repository.MethodEntry{{Value: row["phone"]}}
		}
		inputs = append(inputs, in)
	}

	return inputs, skipped, nil
}
