/*
 * Copyright 2025 Comcast Cable Communications Management, LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/comcast/fishyredfish/buildinfo"
	"github.com/comcast/fishyredfish/common"
	"github.com/comcast/fishyredfish/config"
	"github.com/comcast/fishyredfish/logger"
	"github.com/comcast/fishyredfish/metrics"
	"github.com/comcast/fishyredfish/middleware/logging"
	"github.com/comcast/fishyredfish/pool"
	"github.com/comcast/fishyredfish/redfish"
	fishy_vault "github.com/comcast/fishyredfish/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	_ "github.com/comcast/fishyredfish/intel"
	_ "github.com/comcast/fishyredfish/supermicro"
)

const (
	app = "fishyredfish"
)

var (
	a                 = kingpin.New(app, "query and control BMCs over the redfish api")
	host              = a.Flag("host", "BMC address, with or without scheme").Default("").Envar("BMC_HOST").String()
	username          = a.Flag("user", "BMC static username").Default("").Envar("BMC_USERNAME").String()
	password          = a.Flag("password", "BMC static password").Default("").Envar("BMC_PASSWORD").String()
	vendor            = a.Flag("vendor", "BMC vendor adapter").PlaceHolder("[intel|supermicro]").Default("supermicro").Envar("BMC_VENDOR").String()
	sslVerify         = a.Flag("ssl-verify", "verify the TLS certificate of the BMC").Default("false").Envar("SSL_VERIFY").Bool()
	name              = a.Flag("name", "display name of the BMC used in logs and output").Default("").Envar("BMC_NAME").String()
	targetsFile       = a.Flag("targets", "yaml file listing BMC targets and credential profiles").Default("").Envar("TARGETS_FILE").String()
	concurrency       = a.Flag("concurrency", "number of targets queried in parallel").Default("4").Envar("CONCURRENCY").Int()
	system            = a.Flag("system", "index of the system on the BMC").Default("0").Envar("BMC_SYSTEM").Int()
	bmcTimeout        = a.Flag("timeout", "timeout of a single BMC request").Default("30s").Envar("BMC_TIMEOUT").Duration()
	logLevel          = a.Flag("log.level", "log level verbosity").PlaceHolder("[debug|info|warn|error]").Default("warn").Envar("LOG_LEVEL").String()
	logMethod         = a.Flag("log.method", "alternative method for logging in addition to stdout").PlaceHolder("[file|vector]").Default("").Envar("LOG_METHOD").String()
	logFilePath       = a.Flag("log.file-path", "directory path where log files are written if log-method is file").Default("/var/log/fishyredfish").Envar("LOG_FILE_PATH").String()
	logFileMaxSize    = a.Flag("log.file-max-size", "max file size in megabytes if log-method is file").Default("256").Envar("LOG_FILE_MAX_SIZE").Int()
	logFileMaxBackups = a.Flag("log.file-max-backups", "max file backups before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_BACKUPS").Int()
	logFileMaxAge     = a.Flag("log.file-max-age", "max file age in days before they are rotated if log-method is file").Default("1").Envar("LOG_FILE_MAX_AGE").Int()
	vectorEndpoint    = a.Flag("vector.endpoint", "vector endpoint to send structured json logs to").Default("http://0.0.0.0:4444").Envar("VECTOR_ENDPOINT").String()
	vectorSSLVerify   = a.Flag("vector.ssl-verify", "verify the TLS certificate of the vector endpoint").Default("false").Envar("VECTOR_SSL_VERIFY").Bool()
	vaultAddr         = a.Flag("vault.addr", "Vault instance address to get BMC credentials from").Default("https://vault.com").Envar("VAULT_ADDRESS").String()
	vaultRoleId       = a.Flag("vault.role-id", "Vault Role ID for AppRole").Default("").Envar("VAULT_ROLE_ID").String()
	vaultSecretId     = a.Flag("vault.secret-id", "Vault Secret ID for AppRole").Default("").Envar("VAULT_SECRET_ID").String()
	metricsDump       = a.Flag("metrics.dump", "print request metrics to stderr when done").Default("false").Bool()

	_          = a.Command(cmdPower, "print the power consumption in watts")
	_          = a.Command(cmdThermal, "print the temperature readings")
	_          = a.Command(cmdState, "print the power state")
	_          = a.Command(cmdMetrics, "print thermal, power and vendor metrics")
	actionCmd  = a.Command(cmdAction, "send a power action to the system")
	actionType = actionCmd.Arg("type", "reset type, e.g. On or ForceOff").Required().String()
	_          = a.Command(cmdResetManager, "restart the BMC")
	_          = a.Command(cmdVersion, "print build information")

	log *zap.Logger
)

func newLogConfig() logger.LoggerConfig {
	return logger.LoggerConfig{
		LogLevel:  *logLevel,
		LogMethod: *logMethod,
		LogFile: logger.LogFile{
			Path:       *logFilePath,
			MaxSize:    *logFileMaxSize,
			MaxBackups: *logFileMaxBackups,
			MaxAge:     *logFileMaxAge,
		},
		VectorEndpoint: *vectorEndpoint,
		SSLVerify:      *vectorSSLVerify,
	}
}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	a.HelpFlag.Short('h')
	a.Version(buildinfo.Version())

	command, err := a.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing argument flags - %s\n", err.Error())
		return 2
	}

	if command == cmdVersion {
		buildinfo.Print(os.Stdout)
		return 0
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = ""
	}

	// validate logFilePath exists and is a directory
	if *logMethod == logger.MethodFile {
		fd, err := os.Stat(*logFilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error checking log file path - %s\n", err.Error())
			return 1
		}
		if !fd.IsDir() {
			fmt.Fprintf(os.Stderr, "%s is not a directory\n", *logFilePath)
			return 1
		}
	}

	log, _, err = logger.New(app, hostname, newLogConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logger - log_method=%s vector_endpoint=%s log_file_path=%s - err=%s\n",
			*logMethod, *vectorEndpoint, *logFilePath, err.Error())
		return 1
	}
	log = log.With(zap.String("trace_id", logging.NewTraceID()), zap.String("command", command))
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	targets, err := loadTargets()
	if err != nil {
		log.Error("failed loading targets", zap.Error(err))
		return 1
	}

	// configure vault client if vaultRoleId & vaultSecretId are set
	var secrets common.SecretReader
	if *vaultRoleId != "" && *vaultSecretId != "" {
		vault, err := fishy_vault.NewAppRoleClient(fishy_vault.Parameters{
			Address:         *vaultAddr,
			ApproleRoleID:   *vaultRoleId,
			ApproleSecretID: *vaultSecretId,
		}, log)
		if err != nil {
			log.Error("failed initializing vault client", zap.Error(err),
				zap.String("vault_address", *vaultAddr),
				zap.String("vault_role_id", *vaultRoleId))
			return 1
		}
		if err := vault.Login(ctx); err != nil {
			log.Error("failed logging in to vault", zap.Error(err), zap.String("vault_address", *vaultAddr))
			return 1
		}
		defer func() {
			if err := vault.Revoke(context.Background()); err != nil {
				log.Warn("unable to revoke vault token", zap.Error(err))
			}
		}()
		addProfiles(vault, targets.Profiles)
		secrets = vault
	}
	creds := common.NewCredentials(secrets)

	reg := prometheus.NewRegistry()
	var metricLabels map[string]string
	if hostname != "" {
		metricLabels = map[string]string{"instance": hostname}
	}
	transportMetrics := metrics.NewTransportMetrics(reg, metricLabels)

	var tasks []*pool.Task
	for _, target := range targets.Targets {
		target := target
		tasks = append(tasks, pool.NewTask(target.DisplayName(), func() (interface{}, error) {
			if err := resolveCredential(ctx, creds, &target); err != nil {
				return nil, err
			}

			transport := common.NewHTTPTransport(target.SSLVerify, *bmcTimeout)
			opts := []redfish.Option{
				redfish.WithLogger(log),
				redfish.WithTransport(metrics.Instrument(logging.Transport(transport, log), transportMetrics)),
			}
			return run(ctx, target, command, *system, *actionType, opts...)
		}))
	}

	p := pool.NewPool(tasks, *concurrency)
	p.Run()

	failed, err := writeResults(os.Stdout, p.Tasks)
	if err != nil {
		log.Error("failed writing results", zap.Error(err))
		return 1
	}

	if *metricsDump {
		if err := dumpMetrics(reg); err != nil {
			log.Error("failed writing request metrics", zap.Error(err))
		}
	}

	if failed {
		return 1
	}
	return 0
}

// loadTargets reads the targets file, or builds a single target from flags
func loadTargets() (*config.Targets, error) {
	if *targetsFile != "" {
		targets, err := config.LoadTargets(*targetsFile)
		if err != nil {
			return nil, err
		}
		for i := range targets.Targets {
			t := &targets.Targets[i]
			if t.Vendor == "" {
				t.Vendor = *vendor
			}
			if t.User == "" && t.Pass == "" && t.CredentialProfile == "" {
				t.User, t.Pass = *username, *password
			}
		}
		return targets, nil
	}

	target := config.Target{
		Config: config.Config{
			Host:      *host,
			User:      *username,
			Pass:      *password,
			SSLVerify: *sslVerify,
			Name:      *name,
		},
		Vendor: *vendor,
	}
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("either --host or --targets must be set - %w", err)
	}

	return &config.Targets{Targets: []config.Target{target}}, nil
}

func dumpMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(os.Stderr, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
