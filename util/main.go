package main

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httputil"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	backend "github.com/NectGmbH/solidserver-backend"
	"github.com/NectGmbH/solidserver-backend/provider/mock"
	"github.com/NectGmbH/solidserver-backend/provider/solidserver"

	"github.com/motemen/go-loghttp"
	"github.com/namsral/flag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// BackendNameSolidServer is the name of the solidserver backend
const BackendNameSolidServer = "solidserver"

// BackendNameMock is the name of the mock backend that dumps its state in json
const BackendNameMock = "mock"

// BackendNames contains a list of all valid backend names.
var BackendNames = []string{
	BackendNameSolidServer,
	BackendNameMock,
}

// recordSetFile is the yaml structure the recordset actions consume.
type recordSetFile struct {
	Zone      string            `yaml:"Zone"`
	RecordSet backend.RecordSet `yaml:"RecordSet"`
}

// recordSetChangeFile is the yaml structure the update action consumes.
type recordSetChangeFile struct {
	Zone     string             `yaml:"Zone"`
	Desired  *backend.RecordSet `yaml:"Desired"`
	Existing *backend.RecordSet `yaml:"Existing"`
}

func main() {
	// - Parsing: Action -------------------------------------------------------
	var pingAction bool
	var syncAction string
	var createZoneAction string
	var deleteZoneAction string
	var createRecordSetAction string
	var deleteRecordSetAction string
	var updateRecordSetAction string
	var monitorAction bool
	flag.BoolVar(&pingAction, "ping", false, "Action, probes the backend and exits 0 when it is reachable. Only one action at a time can be executed.")
	flag.StringVar(&syncAction, "sync", "", "Action, syncs the zone with the specified name. Only one action at a time can be executed.")
	flag.StringVar(&createZoneAction, "create-zone", "", "Action, creates the zone with the specified name. Only one action at a time can be executed.")
	flag.StringVar(&deleteZoneAction, "delete-zone", "", "Action, deletes the zone with the specified name. Only one action at a time can be executed.")
	flag.StringVar(&createRecordSetAction, "create-recordset", "", "Action, creates the recordset from the specified yaml file. Only one action at a time can be executed.")
	flag.StringVar(&deleteRecordSetAction, "delete-recordset", "", "Action, deletes the recordset from the specified yaml file. Only one action at a time can be executed.")
	flag.StringVar(&updateRecordSetAction, "update-recordset", "", "Action, updates the recordset from the specified yaml file containing the desired and existing state. Only one action at a time can be executed.")
	flag.BoolVar(&monitorAction, "monitor", false, "Action, periodically pings the backend and syncs the zones given via -zone, serving /metrics and /healthz. Only one action at a time can be executed.")

	// - Parsing: General ------------------------------------------------------
	var backendName string
	var debug bool
	var dumpHTTP bool
	var jsonLogging bool
	var port int
	var monitorInterval time.Duration
	var zones StringSlice
	flag.StringVar(&backendName, "backend", BackendNameSolidServer, fmt.Sprintf("name of the backend, currently supported: %+v", BackendNames))
	flag.BoolVar(&debug, "debug", false, "flag indicating whether debug output should be written")
	flag.BoolVar(&dumpHTTP, "dump-http", false, "flag indicating whether all http requests and responses should be dumped")
	flag.BoolVar(&jsonLogging, "json-logging", false, "Always use JSON logging")
	flag.IntVar(&port, "port", 8080, "port for /metrics and /healthz http endpoints. Only used when -monitor is given")
	flag.DurationVar(&monitorInterval, "monitor-interval", 60*time.Second, "interval between monitor cycles. Only used when -monitor is given")
	flag.Var(&zones, "zone", "Name of a zone to sync in monitor mode. Multiple can be given, e.g.: -zone example.com -zone example.org")

	// - Parsing: SOLIDserver --------------------------------------------------
	var host string
	var space string
	var username string
	var password string
	var ssl bool
	var verifySSL bool
	flag.StringVar(&host, "host", "", "IP or hostname of the solidserver api")
	flag.StringVar(&space, "space", "", "name of the solidserver space")
	flag.StringVar(&username, "username", "", "username to auth against solidserver")
	flag.StringVar(&password, "password", "", "password to auth against solidserver")
	flag.BoolVar(&ssl, "ssl", true, "flag indicating whether to use https for api communication")
	flag.BoolVar(&verifySSL, "verify-ssl", false, "flag indicating whether the api certificate should be verified")

	// - Parsing: Mocked backend -----------------------------------------------
	var mockZonePath string
	var mockZoneStatePath string
	flag.StringVar(&mockZonePath, "mock-file", "", "file containing yaml encoded []backend.Zone")
	flag.StringVar(&mockZoneStatePath, "mock-file-state", "", "json encoded mock state and updates counter")

	flag.Parse()

	if jsonLogging {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// - Validation: Action ----------------------------------------------------
	noActions := 0
	if pingAction {
		noActions++
	}
	if syncAction != "" {
		noActions++
	}
	if createZoneAction != "" {
		noActions++
	}
	if deleteZoneAction != "" {
		noActions++
	}
	if createRecordSetAction != "" {
		noActions++
	}
	if deleteRecordSetAction != "" {
		noActions++
	}
	if updateRecordSetAction != "" {
		noActions++
	}
	if monitorAction {
		noActions++
	}

	if noActions != 1 {
		logrus.Fatalf("none or multiple actions given, please give exactly one of these args: -ping -sync ZONENAME -create-zone ZONENAME -delete-zone ZONENAME -create-recordset PATH -delete-recordset PATH -update-recordset PATH -monitor")
	}

	// - Validation: General ---------------------------------------------------
	if !strInStrSlice(backendName, BackendNames) {
		logrus.Fatalf("unknown backend `%s`, expected one of these: %v", backendName, BackendNames)
	}

	if monitorAction && len(zones) == 0 {
		logrus.Fatalf("no zones given for monitor mode, pass them using -zone")
	}

	// - Validation: Mock ------------------------------------------------------
	if backendName == BackendNameMock {
		if mockZonePath == "" {
			logrus.Fatalf("missing -mock-file parameter")
		}
	}

	// - Setup Debugging -------------------------------------------------------
	initDumpHTTP(dumpHTTP)

	// - Setup Metrics ---------------------------------------------------------
	var metrics *solidserver.Metrics
	if monitorAction {
		metrics = &solidserver.Metrics{}
		err := metrics.Init()
		if err != nil {
			logrus.Fatalf("couldn't initialize metrics, see: %v", err)
		}
	}

	// - Setup Backend ---------------------------------------------------------
	var b backend.Backend
	if backendName == BackendNameSolidServer {
		p, err := solidserver.NewProvider(solidserver.Config{
			Host:      host,
			Space:     space,
			Username:  username,
			Password:  password,
			SSL:       ssl,
			VerifySSL: verifySSL,
		}, metrics)
		if err != nil {
			logrus.Fatalf("couldn't setup solidserver backend, see: %v", err)
		}

		b = p
	} else if backendName == BackendNameMock {
		mockBuf, err := ioutil.ReadFile(mockZonePath)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"path":   mockZonePath,
				"reason": err,
			}).Fatal("couldn't read mock zones")
		}

		var seed []backend.Zone
		err = yaml.Unmarshal(mockBuf, &seed)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"path":   mockZonePath,
				"reason": err,
			}).Fatal("couldn't unmarshal mock zones")
		}

		for _, z := range seed {
			logrus.WithField("zone", z.String()).Debug("Got mock zone seed")
		}

		b = mock.NewProvider(seed, mockZoneStatePath)
	}

	if debug {
		b = backend.NewDebugBackend(b)
	}

	// - Handle Action ---------------------------------------------------------
	if pingAction {
		if !b.Ping() {
			logrus.Fatalf("backend `%s` is not reachable", backendName)
		}

		logrus.Infof("backend `%s` is reachable", backendName)
	} else if syncAction != "" {
		b.Sync(backend.Zone{Name: syncAction})
	} else if createZoneAction != "" {
		err := b.CreateZone(backend.Zone{Name: createZoneAction})
		if err != nil {
			logrus.Fatalf("couldn't create zone `%s` using backend `%s`, see: %v", createZoneAction, backendName, err)
		}

		logrus.Infof("created zone `%s`.", createZoneAction)
	} else if deleteZoneAction != "" {
		err := b.DeleteZone(backend.Zone{Name: deleteZoneAction})
		if err != nil {
			logrus.Fatalf("couldn't delete zone `%s` using backend `%s`, see: %v", deleteZoneAction, backendName, err)
		}

		logrus.Infof("deleted zone `%s`.", deleteZoneAction)
	} else if createRecordSetAction != "" {
		rsf := loadRecordSetFile(createRecordSetAction)

		err := b.CreateRecordSet(backend.Zone{Name: rsf.Zone}, rsf.RecordSet)
		if err != nil {
			logrus.Fatalf("couldn't create recordset `%s` in zone `%s`, see: %v", rsf.RecordSet.Name, rsf.Zone, err)
		}

		logrus.Infof("created recordset `%s` in zone `%s`.", rsf.RecordSet.Name, rsf.Zone)
	} else if deleteRecordSetAction != "" {
		rsf := loadRecordSetFile(deleteRecordSetAction)

		err := b.DeleteRecordSet(backend.Zone{Name: rsf.Zone}, rsf.RecordSet)
		if err != nil {
			logrus.Fatalf("couldn't delete recordset `%s` in zone `%s`, see: %v", rsf.RecordSet.Name, rsf.Zone, err)
		}

		logrus.Infof("deleted recordset `%s` in zone `%s`.", rsf.RecordSet.Name, rsf.Zone)
	} else if updateRecordSetAction != "" {
		buf, err := ioutil.ReadFile(updateRecordSetAction)
		if err != nil {
			logrus.Fatalf("couldn't read file `%s`, see: %v", updateRecordSetAction, err)
		}

		var csf recordSetChangeFile
		err = yaml.Unmarshal(buf, &csf)
		if err != nil {
			logrus.Fatalf("couldn't deserialize file `%s` as yaml, see: %v", updateRecordSetAction, err)
		}

		err = b.UpdateRecordSet(backend.Zone{Name: csf.Zone}, backend.RecordSetChange{
			Desired:  csf.Desired,
			Existing: csf.Existing,
		})
		if err != nil {
			logrus.Fatalf("couldn't update recordset in zone `%s`, see: %v", csf.Zone, err)
		}

		logrus.Infof("updated recordset in zone `%s`.", csf.Zone)
	} else if monitorAction {
		monitor(b, zones, port, monitorInterval)
	}
}

func loadRecordSetFile(path string) *recordSetFile {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		logrus.Fatalf("couldn't read file `%s`, see: %v", path, err)
	}

	var rsf recordSetFile
	err = yaml.Unmarshal(buf, &rsf)
	if err != nil {
		logrus.Fatalf("couldn't deserialize file `%s` as yaml, see: %v", path, err)
	}

	if rsf.Zone == "" {
		logrus.Fatalf("no zone given in `%s`", path)
	}

	return &rsf
}

// monitor periodically pings the backend and syncs the passed zones,
// serving /metrics and /healthz until interrupted.
func monitor(b backend.Backend, zones StringSlice, port int, interval time.Duration) {
	var lastPingOkTS int64

	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		gracePeriod := 2 * interval
		lastPingOk := time.Unix(atomic.LoadInt64(&lastPingOkTS), 0)

		if time.Since(lastPingOk) < gracePeriod {
			w.WriteHeader(200)
			w.Write([]byte("{ \"status\": \"healthy\" }"))
		} else {
			w.WriteHeader(500)
			w.Write([]byte("{ \"status\": \"unhealthy\" }"))
		}
	})

	http.Handle("/metrics", promhttp.Handler())

	go (func() {
		err := http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
		logrus.Fatalf("http server stopped, see: %v", err)
	})()

	cycle := func() {
		if b.Ping() {
			atomic.SwapInt64(&lastPingOkTS, time.Now().Unix())
		} else {
			logrus.Warn("backend is not reachable")
		}

		for _, zone := range zones {
			b.Sync(backend.Zone{Name: zone})
		}
	}

	logrus.Infof("monitor started, checking %d zones every %s", len(zones), interval.String())
	cycle()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-time.After(interval):
			cycle()
		case <-signalCh:
			logrus.Info("Received ^C, shutting down...")
			return
		}
	}
}

func initDumpHTTP(dumpHTTP bool) {
	// Dump http traffic if specified (-dump-http)
	loghttp.DefaultTransport = &loghttp.Transport{
		Transport: http.DefaultTransport,
		LogRequest: func(req *http.Request) {
			if dumpHTTP {
				buf, err := httputil.DumpRequest(req, true)
				if err != nil {
					logrus.StandardLogger().Errorf("Error while dumping http request: %v", err)
					return
				}

				logrus.StandardLogger().Errorf("REQ: %s", string(buf))
			}
		},
		LogResponse: func(resp *http.Response) {
			if dumpHTTP {
				buf, err := httputil.DumpResponse(resp, true)
				if err != nil {
					logrus.StandardLogger().Errorf("Error while dumping http response: %v", err)
					return
				}

				logrus.StandardLogger().Errorf("RESP: %s", string(buf))
			}
		},
	}

	http.DefaultTransport = loghttp.DefaultTransport
}
