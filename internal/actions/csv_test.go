package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContactsCSV(t *testing.T) {
	text := "first_name,last_name,company,title,linkedin_url,email,phone\n" +
		"Jordan,Price,Bright Path Advisors,Advisor,https://linkedin.com/in/jprice,jordan@example.com,555-0101\n" +
		"Sam,Lee,,,,,\n"

	inputs, skipped, err := parseContactsCSV(text)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, inputs, 2)

	assert.Equal(t, "Jordan", inputs[0].FirstName)
	assert.Equal(t, "Price", inputs[0].LastName)
	assert.Equal(t, "Bright Path Advisors", inputs[0].Company)
	assert.Equal(t, "Advisor", inputs[0].RoleTitle)
	assert.Equal(t, "https://linkedin.com/in/jprice", inputs[0].LinkedInURL)
	assert.Equal(t, "Active", inputs[0].Status)
	require.Len(t, inputs[0].Emails, 1)
	assert.Equal(t, "jordan@example.com", inputs[0].Emails[0].Value)
	require.Len(t, inputs[0].Phones, 1)
	assert.Equal(t, "555-0101", inputs[0].Phones[0].Value)

	assert.Empty(t, inputs[1].Emails)
	assert.Empty(t, inputs[1].Phones)
}

func TestParseContactsCSVSkipsNamelessRows(t *testing.T) {
	text := "firstname,lastname,company\n" +
		"Jordan,Price,Acme\n" +
		",Price,Acme\n" +
		"Jordan,,Acme\n"

	inputs, skipped, err := parseContactsCSV(text)
	require.NoError(t, err)
	assert.Len(t, inputs, 1)
	assert.Equal(t, 2, skipped)
}

func TestParseContactsCSVHeaderAliases(t *testing.T) {
	text := "First,Last,Organization,Role\nJordan,Price,Acme,CTO\n"

	inputs, _, err := parseContactsCSV(text)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "Acme", inputs[0].Company)
	assert.Equal(t, "CTO", inputs[0].RoleTitle)
}

func TestParseContactsCSVUnreadable(t *testing.T) {
	_, _, err := parseContactsCSV(`first_name,last_name` + "\n" + `"unterminated`)
	assert.Error(t, err)
}
