package service

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/repository"
	"github.com/lumengrid/lumen_api/internal/utils"
)

// ClientService manages registered API consumers and their credentials.
type ClientService struct {
	clientRepo *repository.ClientRepository
}

func NewClientService(clientRepo *repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// Register provisions a new client with freshly generated credentials. The
// live and sandbox keys are only returned here; list responses omit them.
func (s *ClientService) Register(name string, ipWhitelist []string) (*models.Client, error) {
	apiKey, err := utils.GenerateLiveKey()
	if err != nil {
		return nil, err
	}
	sandboxKey, err := utils.GenerateSandboxKey()
	if err != nil {
		return nil, err
	}
	secret, err := utils.GenerateCallbackSecret()
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		ClientID:       uuid.NewString(),
		Name:           name,
		APIKey:         apiKey,
		SandboxKey:     sandboxKey,
		CallbackSecret: secret,
		IPWhitelist:    ipWhitelist,
		IsActive:       true,
	}
	if err := s.clientRepo.Create(client); err != nil {
		return nil, err
	}

	log.Info().Str("client_id", client.ClientID).Str("name", name).Msg("Client registered")
	return client, nil
}

// GetByID returns a client by its numeric id.
func (s *ClientService) GetByID(id int) (*models.Client, error) {
	c, err := s.clientRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrInvalidClient
		}
		return nil, err
	}
	return c, nil
}

// Update persists changes to a client's name, whitelist and active flag.
func (s *ClientService) Update(client *models.Client) error {
	return s.clientRepo.Update(client)
}

// RegenerateKeys rotates one of a client's credentials. keyType is "live",
// "sandbox" or "secret".
func (s *ClientService) RegenerateKeys(id int, keyType string) (*models.Client, error) {
	client, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	switch keyType {
	case "live":
		client.APIKey, err = utils.GenerateLiveKey()
	case "sandbox":
		client.SandboxKey, err = utils.GenerateSandboxKey()
	case "secret":
		client.CallbackSecret, err = utils.GenerateCallbackSecret()
	default:
		return nil, errors.New("invalid key_type: must be 'live', 'sandbox', or 'secret'")
	}
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(client); err != nil {
		return nil, err
	}

	log.Info().Str("client_id", client.ClientID).Str("key_type", keyType).Msg("Client keys regenerated")
	return client, nil
}

// List returns all registered clients with credentials redacted.
func (s *ClientService) List() ([]*models.Client, error) {
	clients, err := s.clientRepo.List()
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		c.APIKey = ""
		c.SandboxKey = ""
		c.CallbackSecret = ""
	}
	return clients, nil
}
