package cqldb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Hosts:          []string{"localhost"},
		NumConns:       1,
		ConnectTimeout: time.Second * 5,
		Keyspace: KeyspaceConfig{
			Name:   "assethub",
			Create: true,
			Replication: map[string]interface{}{
				"class":              "SimpleStrategy",
				"replication_factor": 1,
			},
		},
	}
	require.NoError(t, valid.Validate())

	noHosts := valid
	noHosts.Hosts = nil
	require.Error(t, noHosts.Validate())

	noReplication := valid
	noReplication.Keyspace.Replication = nil
	require.Error(t, noReplication.Validate())

	noKeyspace := valid
	noKeyspace.Keyspace = KeyspaceConfig{}
	require.Error(t, noKeyspace.Validate())
}

func TestReplicationToString(t *testing.T) {
	got := replicationToString(map[string]interface{}{
		"replication_factor": 1,
		"class":              "SimpleStrategy",
	})
	require.Equal(t, "{'class': 'SimpleStrategy', 'replication_factor': 1}", got)
}
