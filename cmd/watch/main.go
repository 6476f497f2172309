package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alicehocane/watch/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "WATCH_HOST",
		flagKey:      "host",
		defaultValue: "127.0.0.1",
	}
	port = configVar[int]{
		envKey:       "WATCH_PORT",
		flagKey:      "port",
		defaultValue: 8750,
	}
	logLevel = configVar[string]{
		envKey:       "WATCH_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	dataDir = configVar[string]{
		envKey:       "WATCH_DATA_DIR",
		flagKey:      "data-dir",
		defaultValue: "/var/lib/watch",
	}
	roomTTL = configVar[time.Duration]{
		envKey:       "WATCH_ROOM_TTL",
		flagKey:      "room-ttl",
		defaultValue: 24 * time.Hour,
	}
	presenceTTL = configVar[time.Duration]{
		envKey:       "WATCH_PRESENCE_TTL",
		flagKey:      "presence-ttl",
		defaultValue: 30 * time.Second,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Listen host")
	pflag.Int(port.flagKey, port.defaultValue, "Listen port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(dataDir.flagKey, dataDir.defaultValue, "Directory for the device identity")
	pflag.Duration(roomTTL.flagKey, roomTTL.defaultValue, "Idle lifetime of room records")
	pflag.Duration(presenceTTL.flagKey, presenceTTL.defaultValue, "Lifetime of a presence record past its last refresh")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(dataDir.flagKey, dataDir.envKey)
	viper.BindEnv(roomTTL.flagKey, roomTTL.envKey)
	viper.BindEnv(presenceTTL.flagKey, presenceTTL.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(dataDir.flagKey, dataDir.defaultValue)
	viper.SetDefault(roomTTL.flagKey, roomTTL.defaultValue)
	viper.SetDefault(presenceTTL.flagKey, presenceTTL.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	return &app.AppConfig{
		Host:          viper.GetString(host.flagKey),
		Port:          viper.GetInt(port.flagKey),
		LogLevel:      viper.GetString(logLevel.flagKey),
		DataDir:       viper.GetString(dataDir.flagKey),
		RoomTTL:       viper.GetDuration(roomTTL.flagKey),
		PresenceTTL:   viper.GetDuration(presenceTTL.flagKey),
		RedisHost:     viper.GetString(redisHost.flagKey),
		RedisPort:     viper.GetInt(redisPort.flagKey),
		RedisPassword: viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
