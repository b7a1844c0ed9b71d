package config

import (
	"github.com/plgd-dev/assethub/mapping/store/cqldb"
	"github.com/plgd-dev/assethub/mapping/store/mongodb"
	"github.com/plgd-dev/assethub/mapping/store/postgres"
	"github.com/plgd-dev/assethub/pkg/config/database"
)

type Config = database.Config[*mongodb.Config, *cqldb.Config, *postgres.Config]
