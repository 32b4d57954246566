package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syncmiru/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	jwtPublicKeyPath = configVar[string]{
		envKey:       "SERVER_JWT_PUBLIC_KEY_PATH",
		flagKey:      "jwt-public-key-path",
		defaultValue: "/etc/syncmiru/jwt_public.pem",
	}
	desyncTickMs = configVar[int]{
		envKey:       "SERVER_DESYNC_TICK_MS",
		flagKey:      "desync-tick-ms",
		defaultValue: 250,
	}
	timestampMaxOldMs = configVar[int]{
		envKey:       "SERVER_TIMESTAMP_MAX_OLD_MS",
		flagKey:      "timestamp-max-old-ms",
		defaultValue: 4000,
	}
	pingMaxSeconds = configVar[int]{
		envKey:       "SERVER_PING_MAX_SECONDS",
		flagKey:      "ping-max-seconds",
		defaultValue: 10,
	}
	playlistLimit = configVar[int]{
		envKey:       "SERVER_PLAYLIST_LIMIT",
		flagKey:      "playlist-limit",
		defaultValue: 100,
	}
	roomNameMaxLen = configVar[int]{
		envKey:       "SERVER_ROOM_NAME_MAX_LEN",
		flagKey:      "room-name-max-len",
		defaultValue: 64,
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(jwtPublicKeyPath.flagKey, jwtPublicKeyPath.defaultValue, "Path to the PEM-encoded RSA public key used to verify handshake tokens")
	pflag.Int(desyncTickMs.flagKey, desyncTickMs.defaultValue, "Desync controller tick in milliseconds")
	pflag.Int(timestampMaxOldMs.flagKey, timestampMaxOldMs.defaultValue, "Maximum age of a timestamp sample considered for corrections, in milliseconds")
	pflag.Int(pingMaxSeconds.flagKey, pingMaxSeconds.defaultValue, "Ceiling for client-reported ping in seconds")
	pflag.Int(playlistLimit.flagKey, playlistLimit.defaultValue, "Maximum number of entries in a room playlist")
	pflag.Int(roomNameMaxLen.flagKey, roomNameMaxLen.defaultValue, "Maximum room name length")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(jwtPublicKeyPath.flagKey, jwtPublicKeyPath.envKey)
	viper.BindEnv(desyncTickMs.flagKey, desyncTickMs.envKey)
	viper.BindEnv(timestampMaxOldMs.flagKey, timestampMaxOldMs.envKey)
	viper.BindEnv(pingMaxSeconds.flagKey, pingMaxSeconds.envKey)
	viper.BindEnv(playlistLimit.flagKey, playlistLimit.envKey)
	viper.BindEnv(roomNameMaxLen.flagKey, roomNameMaxLen.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(jwtPublicKeyPath.flagKey, jwtPublicKeyPath.defaultValue)
	viper.SetDefault(desyncTickMs.flagKey, desyncTickMs.defaultValue)
	viper.SetDefault(timestampMaxOldMs.flagKey, timestampMaxOldMs.defaultValue)
	viper.SetDefault(pingMaxSeconds.flagKey, pingMaxSeconds.defaultValue)
	viper.SetDefault(playlistLimit.flagKey, playlistLimit.defaultValue)
	viper.SetDefault(roomNameMaxLen.flagKey, roomNameMaxLen.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	return &app.AppConfig{
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		JwtPublicKeyPath:  viper.GetString(jwtPublicKeyPath.flagKey),
		DesyncTickMs:      viper.GetInt(desyncTickMs.flagKey),
		TimestampMaxOldMs: viper.GetInt(timestampMaxOldMs.flagKey),
		PingMaxSeconds:    viper.GetInt(pingMaxSeconds.flagKey),
		PlaylistLimit:     viper.GetInt(playlistLimit.flagKey),
		RoomNameMaxLen:    viper.GetInt(roomNameMaxLen.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
