package service

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	"github.com/yourusername/redweb-api/internal/domain/repository"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

const maxNameLength = 100

// CharacterService управляет персонажами пользователя
type CharacterService struct {
	repo repository.CharacterRepository
}

func NewCharacterService(repo repository.CharacterRepository) (*CharacterService, error) {
	if repo == nil {
		return nil, fmt.Errorf("character repository is required")
	}
	return &CharacterService{repo: repo}, nil
}

func validateCharacter(c *entity.Character) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(c.Name) > maxNameLength {
		return fmt.Errorf("%w: name is too long", apperrors.ErrValidation)
	}
	if invalid := c.InvalidStats(); len(invalid) > 0 {
		return fmt.Errorf("%w: stats must be between %d and %d: %s",
			apperrors.ErrValidation, entity.MinStatValue, entity.MaxStatValue, strings.Join(invalid, ", "))
	}
	return nil
}

func (s *CharacterService) List(userID uint) ([]entity.Character, error) {
	return s.repo.ListByUser(userID)
}

func (s *CharacterService) Get(userID, id uint) (*entity.Character, error) {
	return s.repo.GetByID(userID, id)
}

func (s *CharacterService) Create(userID uint, c *entity.Character) (*entity.Character, error) {
	if err := validateCharacter(c); err != nil {
		return nil, err
	}
	c.ID = 0
	c.UserID = userID
	if err := s.repo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CharacterService) Update(userID, id uint, c *entity.Character) (*entity.Character, error) {
	if err := validateCharacter(c); err != nil {
		return nil, err
	}
	c.ID = id
	c.UserID = userID
	if err := s.repo.Update(c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(userID, id)
}

func (s *CharacterService) Delete(userID, id uint) error {
	return s.repo.Delete(userID, id)
}

// ExportFormat - формат выгрузки персонажей
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// Export пишет персонажей пользователя в w в указанном формате
func (s *CharacterService) Export(userID uint, format ExportFormat, w io.Writer) error {
	characters, err := s.repo.ListByUser(userID)
	if err != nil {
		return err
	}
	switch format {
	case ExportCSV:
		return writeCharactersCSV(w, characters)
	case ExportXLSX, "":
		return writeCharactersXLSX(w, characters)
	default:
		return fmt.Errorf("%w: unsupported export format %q", apperrors.ErrValidation, format)
	}
}
