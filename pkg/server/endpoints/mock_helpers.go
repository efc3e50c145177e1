package endpoints

import (
	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smartattend/smartattend-go/pkg/config"
	"github.com/smartattend/smartattend-go/pkg/registry"
	"github.com/smartattend/smartattend-go/pkg/server"
	gormstore "github.com/smartattend/smartattend-go/pkg/store/gorm"
)

// NewMockTestServer creates a server instance with a mocked database for
// unit testing. Returns the server, the sqlmock instance, and any error.
func NewMockTestServer(tokenKey []byte) (*server.Server, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		_ = mockDB.Close()
		return nil, nil, err
	}

	reg := registry.Default()
	st := gormstore.NewStore(gormDB, reg)

	cfg, err := config.Load()
	if err != nil {
		cfg = nil
	}

	s := server.NewServer(gormDB, st, reg, nil, cfg, nil, tokenKey, "127.0.0.1", "0")
	RegisterAll(s)

	return s, mock, nil
}
