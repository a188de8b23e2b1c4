package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName        string `json:"appname"`
	AppEnv         string `json:"appenv"`
	AppPort        uint16 `json:"appport"`
	GinMode        string `json:"ginmode"`
	DBHost         string `json:"dbhost"`
	DBPort         uint16 `json:"dbport"`
	DBName         string `json:"dbname"`
	DBUser         string `json:"dbuser"`
	DBPass         string `json:"dbpass"`
	SessionHours   int    `json:"sessionhours"`
	GeoIPDBPath    string `json:"geoipdbpath"`
	RoleCacheSize  int    `json:"rolecachesize"`
	RateLimitLogin int    `json:"ratelimitlogin"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env file is not fatal; values may come from the process environment.
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file loaded: %v", err)
		}

		appPort, _ := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)
		sessionHours, _ := strconv.Atoi(os.Getenv("SESSION_HOURS"))
		if sessionHours <= 0 {
			sessionHours = 12
		}
		roleCacheSize, _ := strconv.Atoi(os.Getenv("USER_ROLE_CACHE_SIZE"))
		rateLimitLogin, _ := strconv.Atoi(os.Getenv("RATELIMIT_LOGIN"))

		// Initialize the Config struct with values from environment variables.
		config = &Config{
			AppName:        os.Getenv("APPNAME"),
			AppEnv:         os.Getenv("APPENV"),
			AppPort:        uint16(appPort),
			GinMode:        os.Getenv("GINMODE"),
			DBHost:         os.Getenv("DBHOST"),
			DBPort:         uint16(dbPort),
			DBName:         os.Getenv("DBNAME"),
			DBUser:         os.Getenv("DBUSER"),
			DBPass:         os.Getenv("DBPASS"),
			SessionHours:   sessionHours,
			GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
			RoleCacheSize:  roleCacheSize,
			RateLimitLogin: rateLimitLogin,
		}
	})
	return config
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
// Under APPENV=test it opens a shared in-memory SQLite database instead, uniquified per
// process so parallel test binaries do not share state.
func ConnectMySQL() (*gorm.DB, error) {
	if os.Getenv("APPENV") == "test" {
		dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", os.Getpid())
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}

	cfg := LoadConfig()
	// Build the Data Source Name (DSN) using the configuration values.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	// Open a database connection.
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
