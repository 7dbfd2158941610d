// Package fabric is the boundary to the Hyperledger Fabric network.
//
// All ledger interaction goes through the peer binary: transactional
// writes via `peer chaincode invoke`, reads via `peer chaincode query`,
// and block retrieval via `peer channel fetch`. The package holds an
// immutable Config describing the caller's identity and network layout;
// nothing here mutates process-wide environment state.
package fabric

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Config is the immutable client configuration for one gateway session.
// Build one with NewConfig and pass it by value; a render or invoke never
// changes it.
type Config struct {
	// NetworkPath is the Fabric test-network root, e.g.
	// ~/fabric-samples/test-network.
	NetworkPath string

	Channel   string
	Chaincode string

	// Identity selected at startup.
	OrgName   string // short name, e.g. "org1"
	OrgDomain string // e.g. "org1.example.com"
	User      string // e.g. "Admin"
	MSPID     string
	PeerPort  string

	// SettleSeconds is how long callers wait after an invoke before
	// assuming the transaction committed.
	SettleSeconds int
}

// NewConfig validates the network layout and resolves the identity paths
// for the chosen org and user. It fails when the peer organization
// directories are missing, which is the signal that no network is running
// at networkPath.
func NewConfig(networkPath, channel, chaincode, orgName, orgDomain, user string, settleSeconds int) (Config, error) {
	cfg := Config{
		NetworkPath:   networkPath,
		Channel:       channel,
		Chaincode:     chaincode,
		OrgName:       orgName,
		OrgDomain:     orgDomain,
		User:          user,
		SettleSeconds: settleSeconds,
	}

	switch {
	case strings.Contains(orgName, "org2"):
		cfg.PeerPort = "9051"
		cfg.MSPID = "Org2MSP"
	default:
		cfg.PeerPort = "7051"
		cfg.MSPID = "Org1MSP"
	}

	if _, err := os.Stat(cfg.mspDir()); err != nil {
		return Config{}, fmt.Errorf("MSP directory for %s@%s not found at %s: %w", user, orgDomain, cfg.mspDir(), err)
	}
	return cfg, nil
}

// Env returns the complete child-process environment for peer commands.
// The credential variables are derived from the Config on every call; the
// ambient environment contributes only PATH and friends.
func (c Config) Env() []string {
	env := os.Environ()
	env = append(env,
		"PATH="+filepath.Join(c.NetworkPath, "..", "bin")+string(os.PathListSeparator)+os.Getenv("PATH"),
		"FABRIC_CFG_PATH="+filepath.Join(c.NetworkPath, "..", "config")+"/",
		"CORE_PEER_TLS_ENABLED=true",
		"CORE_PEER_LOCALMSPID="+c.MSPID,
		"CORE_PEER_TLS_ROOTCERT_FILE="+c.peerTLSCert(c.OrgDomain),
		"CORE_PEER_MSPCONFIGPATH="+c.mspDir(),
		"CORE_PEER_ADDRESS=localhost:"+c.PeerPort,
	)
	return env
}

// OrdererCA returns the orderer TLS CA certificate path.
func (c Config) OrdererCA() string {
	return filepath.Join(c.NetworkPath,
		"organizations", "ordererOrganizations", "example.com",
		"orderers", "orderer.example.com", "msp", "tlscacerts",
		"tlsca.example.com-cert.pem")
}

// PeerTLSCerts returns the TLS root certs for both endorsing peers.
// Invokes target both orgs so the endorsement policy is satisfied.
func (c Config) PeerTLSCerts() (org1, org2 string) {
	return c.peerTLSCert("org1.example.com"), c.peerTLSCert("org2.example.com")
}

// ConfigtxlatorPath returns the location of the configtxlator binary
// shipped alongside the test network.
func (c Config) ConfigtxlatorPath() string {
	return filepath.Join(c.NetworkPath, "..", "bin", "configtxlator")
}

func (c Config) peerTLSCert(domain string) string {
	return filepath.Join(c.NetworkPath,
		"organizations", "peerOrganizations", domain,
		"peers", "peer0."+domain, "tls", "ca.crt")
}

func (c Config) mspDir() string {
	return filepath.Join(c.NetworkPath,
		"organizations", "peerOrganizations", c.OrgDomain,
		"users", c.User+"@"+c.OrgDomain, "msp")
}

// DiscoverOrgs enumerates peer organizations under networkPath, keyed by
// short name ("org1") with the full domain as value. An empty map means
// the network directories are missing.
func DiscoverOrgs(networkPath string) (map[string]string, error) {
	orgsPath := filepath.Join(networkPath, "organizations", "peerOrganizations")
	entries, err := os.ReadDir(orgsPath)
	if err != nil {
		return nil, fmt.Errorf("no peer organizations at %s: %w", orgsPath, err)
	}

	orgs := make(map[string]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		short, _, _ := strings.Cut(e.Name(), ".")
		orgs[short] = e.Name()
	}
	return orgs, nil
}

// DiscoverUsers lists the enrolled users of an organization, sorted.
func DiscoverUsers(networkPath, orgDomain string) ([]string, error) {
	usersPath := filepath.Join(networkPath, "organizations", "peerOrganizations", orgDomain, "users")
	entries, err := os.ReadDir(usersPath)
	if err != nil {
		return nil, fmt.Errorf("no users for %s: %w", orgDomain, err)
	}

	var users []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name, _, _ := strings.Cut(e.Name(), "@")
		users = append(users, name)
	}
	sort.Strings(users)
	return users, nil
}
