package database

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

type DBUse string

func (u DBUse) ToLower() DBUse {
	return DBUse(strings.ToLower(string(u)))
}

const (
	MongoDB  DBUse = "mongoDB"
	CqlDB    DBUse = "cqlDB"
	Postgres DBUse = "postgres"
)

type DBConfig interface {
	Validate() error
}

type Config[MongoConfig DBConfig, CQLDBConfig DBConfig, PostgresConfig DBConfig] struct {
	Use      DBUse          `yaml:"use" json:"use"`
	MongoDB  MongoConfig    `yaml:"mongoDB" json:"mongoDb"`
	CqlDB    CQLDBConfig    `yaml:"cqlDB" json:"cqlDb"`
	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
}

func isNilPtr(v interface{}) bool {
	return reflect.ValueOf(v).Kind() == reflect.Ptr && reflect.ValueOf(v).IsNil()
}

func (c *Config[MongoConfig, CQLDBConfig, PostgresConfig]) Validate() error {
	switch c.Use.ToLower() {
	case MongoDB.ToLower():
		if isNilPtr(c.MongoDB) {
			return errors.New("mongoDB - is empty")
		}
		if err := c.MongoDB.Validate(); err != nil {
			return fmt.Errorf("mongoDB.%w", err)
		}
		c.Use = MongoDB
	case CqlDB.ToLower():
		if isNilPtr(c.CqlDB) {
			return errors.New("cqlDB - is empty")
		}
		if err := c.CqlDB.Validate(); err != nil {
			return fmt.Errorf("cqlDB.%w", err)
		}
		c.Use = CqlDB
	case Postgres.ToLower():
		if isNilPtr(c.Postgres) {
			return errors.New("postgres - is empty")
		}
		if err := c.Postgres.Validate(); err != nil {
			return fmt.Errorf("postgres.%w", err)
		}
		c.Use = Postgres
	default:
		return fmt.Errorf("use('%v' - only %v, %v or %v are supported)", c.Use, MongoDB, CqlDB, Postgres)
	}
	return nil
}
