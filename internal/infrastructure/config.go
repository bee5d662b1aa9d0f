package infra

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix env prefix for viper
const EnvPrefix = "COURSETRACK"

// runtime environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// AppConfig App option object
type AppConfig struct {
	AppID          string        `mapstructure:"app_id" json:"app_id" yaml:"app_id" validate:"required"`            // Application ID
	Host           string        `mapstructure:"host" json:"host" yaml:"host"`                                      // bind host address
	Port           int           `mapstructure:"port" json:"port" yaml:"port" validate:"min=1,max=65535"`           // bind listen port
	Env            string        `mapstructure:"env" json:"env" yaml:"env" validate:"oneof=development production"` // runtime environment
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" yaml:"request_timeout"`     // per request deadline
	APIPrefix      string        `mapstructure:"api_prefix" json:"api_prefix" yaml:"api_prefix"`                    // route prefix, eg. api/v1
	Database       struct {
		Driver      string        `mapstructure:"driver" json:"driver" yaml:"driver" validate:"oneof=sqlite3 mysql postgres"` // driver name
		Host        string        `mapstructure:"host" json:"host" yaml:"host"`                                               // server host
		MaxConn     int32         `mapstructure:"maxconn" json:"maxconn" yaml:"maxconn" validate:"min=1"`                     // maximum opening connections number
		Password    string        `mapstructure:"password" json:"-" yaml:"password"`                                          // db password
		Port        int           `mapstructure:"port" json:"port" yaml:"port"`                                               // server port
		Protocol    string        `mapstructure:"protocol" json:"protocol" yaml:"protocol" validate:"omitempty,oneof=tcp udp"`
		Query       string        `mapstructure:"query" json:"query" yaml:"query"`                        // DSN query parameter
		Schema      string        `mapstructure:"schema" json:"schema" yaml:"schema" validate:"required"` // database name, or file path for sqlite3
		User        string        `mapstructure:"username" json:"username" yaml:"username"`               // db username
		BusyTimeout time.Duration `mapstructure:"busy_timeout" json:"busy_timeout" yaml:"busy_timeout"`   // bounded wait on a locked sqlite database
		Migrate     bool          `mapstructure:"migrate" json:"migrate" yaml:"migrate"`                  // create tables on start-up
	} `mapstructure:"database" json:"database" yaml:"database"`
	Logging struct {
		FilePath string `mapstructure:"file_path" json:"file_path" yaml:"file_path"`                            // log file path
		Level    string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"` // global logging level
	} `mapstructure:"logging" json:"logging" yaml:"logging"`
	Security struct {
		IDLength int `mapstructure:"id_length" json:"id_length" yaml:"id_length" validate:"min=1"` // length of generated request ID
	} `mapstructure:"security" json:"security" yaml:"security"`
	CORS struct {
		AllowOrigins []string `mapstructure:"allow_origins" json:"allow_origins" yaml:"allow_origins"`
	} `mapstructure:"cors" json:"cors" yaml:"cors"`
	DevOP struct {
		APM bool `mapstructure:"apm" json:"apm" yaml:"apm"`
	} `mapstructure:"devop" json:"devop" yaml:"devop"`
}

// InitConfig init app config using viper
func InitConfig() (*AppConfig, error) {
	// app
	pflag.String("host", "", "binding address")
	pflag.String("app_id", "course-tracker", "application identifier")
	pflag.String("env", EnvDevelopment, "runtime environment, can be 'development' or 'production'")
	pflag.Int("port", 8081, "listening port")
	pflag.Duration("request_timeout", 30*time.Second, "request deadline(m, s and h units are supported), eg.30s")
	pflag.String("api_prefix", "", "route prefix for the REST API, eg.api/v1")

	// database
	pflag.String("database.driver", "sqlite3", "database driver to use, can be 'sqlite3', 'mysql' or 'postgres'")
	pflag.String("database.host", "127.0.0.1", "database host")
	pflag.Int("database.port", 3306, "database server port")
	pflag.String("database.protocol", "", "connection protocol(if mysql is used, this flag must be set), eg.tcp")
	pflag.String("database.username", "", "database username")
	pflag.String("database.password", "", "database password")
	pflag.String("database.schema", "instance/database.sqlite", "database schema, or database file path when sqlite3 is used")
	pflag.String("database.query", "", `additional DSN query parameters('?' is auto prefixed), if you work with mysql and wish to
work with time.Time, you may specify "parseTime=true"`)
	pflag.Int32("database.maxconn", 20, "max connection count")
	pflag.Duration("database.busy_timeout", 30*time.Second, "how long a sqlite3 write waits on a locked database before failing")
	pflag.Bool("database.migrate", true, "create tables and indexes on start-up if missing")

	// logging
	pflag.String("logging.level", "info", "logging level")
	pflag.String("logging.file_path", "", "log to file")

	// security
	pflag.Int("security.id_length", 21, "set length of generated request ID")

	// cors
	pflag.StringSlice("cors.allow_origins", []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}, "origins allowed to call the API")

	// DevOp
	pflag.Bool("devop.apm", false, "enable apm metrics")

	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config = new(AppConfig)
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if config.Logging.Level == "debug" {
		if configJSON, err := json.MarshalIndent(config, "", "  "); err == nil {
			log.Printf("App config: %s\n", string(configJSON))
		}
	}
	return config, nil
}

func validateConfig(config *AppConfig) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("mapstructure")
		if name == "-" || name == "" {
			name = fld.Tag.Get("yaml")
			if name == "-" || name == "" {
				return ""
			}
		}
		return name
	})
	err := validate.Struct(config)
	if _, ok := err.(*validator.InvalidValidationError); ok {
		log.Fatalf("Failed to validate config: %s", err)
	}
	if err == nil {
		return nil
	}

	var msg []string
	for _, field := range err.(validator.ValidationErrors) {
		namespace := field.Namespace()
		fieldName := namespace[strings.IndexByte(namespace, '.')+1:] // trim top level namespace
		switch field.Tag() {
		case "required":
			msg = append(msg, fmt.Sprintf("%s is required", fieldName))
		case "oneof":
			msg = append(msg, fmt.Sprintf("%s must be one of (%s)", fieldName, field.Param()))
		case "min", "max":
			msg = append(msg, fmt.Sprintf("%s must be %s %s", fieldName, field.Tag(), field.Param()))
		}
	}
	if len(msg) > 0 {
		return fmt.Errorf("failed to validate config: \n%s", strings.Join(msg, "\n"))
	}
	return nil
}
