package database

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tauraamui/framewright/pkg/database/dbconn"
)

type DatabaseSetupTestSuite struct {
	suite.Suite

	existingFs         afero.Fs
	existingUc         func() (string, error)
	existingOpenDBConn func(string) (dbconn.GormWrapper, error)
}

func TestDatabaseSetupTestSuite(t *testing.T) {
	suite.Run(t, &DatabaseSetupTestSuite{})
}

func (suite *DatabaseSetupTestSuite) SetupTest() {
	suite.existingFs = fs
	suite.existingUc = uc
	suite.existingOpenDBConn = openDBConnection

	fs = afero.NewMemMapFs()
	uc = func() (string, error) { return "/usercache", nil }
	openDBConnection = func(path string) (dbconn.GormWrapper, error) {
		return dbconn.Mock(), nil
	}
}

func (suite *DatabaseSetupTestSuite) TearDownTest() {
	fs = suite.existingFs
	uc = suite.existingUc
	openDBConnection = suite.existingOpenDBConn
}

func (suite *DatabaseSetupTestSuite) TestSetupCreatesDatabaseFile() {
	suite.Require().NoError(Setup())

	exists, err := afero.Exists(fs, "/usercache/tacusci/framewright/fw.db")
	suite.Require().NoError(err)
	suite.True(exists)
}

func (suite *DatabaseSetupTestSuite) TestSetupRefusesToClobberExistingDatabase() {
	suite.Require().NoError(Setup())

	err := Setup()
	suite.Require().Error(err)
	suite.ErrorIs(err, ErrDBAlreadyExists)
}

func (suite *DatabaseSetupTestSuite) TestEnvVarOverridesDatabaseLocation() {
	suite.T().Setenv("FRAMEWRIGHT_DB", "/custom/place/fw.db")

	suite.Require().NoError(Setup())

	exists, err := afero.Exists(fs, "/custom/place/fw.db")
	suite.Require().NoError(err)
	suite.True(exists)
}

func (suite *DatabaseSetupTestSuite) TestDestroyRemovesDatabaseFile() {
	suite.Require().NoError(Setup())
	suite.Require().NoError(Destroy())

	exists, err := afero.Exists(fs, "/usercache/tacusci/framewright/fw.db")
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *DatabaseSetupTestSuite) TestConnectOpensAndMigrates() {
	db, err := Connect()
	suite.Require().NoError(err)
	suite.NotNil(db)
}

func TestResolveDBPathPrefersEnvOverride(t *testing.T) {
	t.Setenv("FRAMEWRIGHT_DB", "/custom/fw.db")

	path, err := resolveDBPath(func() (string, error) { return "/usercache", nil })
	require.NoError(t, err)
	require.Equal(t, "/custom/fw.db", path)
}
