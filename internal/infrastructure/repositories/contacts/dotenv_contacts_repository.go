package contacts

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rios0rios0/lockupdater/internal/domain/entities"
)

const (
	dotenvName    = ".env"
	adminsJSONKey = "ADMINS_JSON"
)

// DotenvContactsRepository reads ADMINS_JSON from the .env file one level above the project.
// The value is a JSON list of [name, email] pairs.
type DotenvContactsRepository struct{}

// NewDotenvContactsRepository creates a new DotenvContactsRepository.
func NewDotenvContactsRepository() *DotenvContactsRepository {
	return &DotenvContactsRepository{}
}

// ProjectAdmins returns the administrators declared for the project.
func (it *DotenvContactsRepository) ProjectAdmins(project *entities.Project) ([]entities.AdminContact, error) {
	path := filepath.Join(filepath.Dir(project.Dir), dotenvName)

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("env")
	if err := reader.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %w", entities.ErrPrecondition, path, err)
	}

	raw := strings.TrimSpace(reader.GetString(adminsJSONKey))
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is missing from %s", entities.ErrPrecondition, adminsJSONKey, path)
	}
	return ParseAdmins(raw)
}

// ParseAdmins decodes a JSON list of [name, email] pairs.
func ParseAdmins(raw string) ([]entities.AdminContact, error) {
	var pairs [][]string
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON: %w", entities.ErrPrecondition, adminsJSONKey, err)
	}

	admins := make([]entities.AdminContact, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 || strings.TrimSpace(pair[1]) == "" { //nolint:mnd // name and email
			return nil, fmt.Errorf("%w: %s entry %d must be [name, email]", entities.ErrPrecondition, adminsJSONKey, i)
		}
		admins = append(admins, entities.AdminContact{
			Name:  strings.TrimSpace(pair[0]),
			Email: strings.TrimSpace(pair[1]),
		})
	}
	if len(admins) == 0 {
		return nil, fmt.Errorf("%w: %s lists no administrators", entities.ErrPrecondition, adminsJSONKey)
	}
	return admins, nil
}
