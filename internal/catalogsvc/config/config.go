package config

import (
	"os"
)

type Config struct {
	MongoURI string
}

func Load() Config {
	return Config{
		MongoURI: os.Getenv("MONGODB_URI"), // expected to be like: mongodb://localhost:27017/gamevault
	}
}
