package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d3ming/ycx25-voter/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "companies.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Company{}))
	return db
}

func newTestCompany(name string, tier models.Tier, rank int, founders []models.Founder, tags []string) models.Company {
	c := models.Company{
		Name:             name,
		Description:      name + " does things.",
		ShortDescription: name + " does things.",
		FoundedYear:      models.Unknown,
		Location:         models.Unknown,
		Tier:             tier,
		Rank:             rank,
	}
	c.SetFounders(founders)
	c.SetTags(tags)
	return c
}

// seedCompanies legt die Firmen in der gegebenen Reihenfolge an und liefert den Service.
func seedCompanies(t *testing.T, companies ...models.Company) (*CompanyService, []models.Company) {
	t.Helper()
	db := newTestDB(t)
	for i := range companies {
		require.NoError(t, db.Create(&companies[i]).Error)
	}
	return NewCompanyService(db, zap.NewNop()), companies
}

func viewNames(views []CompanyView) []string {
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.Name)
	}
	return names
}
