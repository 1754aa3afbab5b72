package directory

import (
	"context"
	"crypto/tls"
	"net/url"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"

	"timetracking/config"
	"timetracking/utils"
)

const (
	authSimple = "SIMPLE"
	authNTLM   = "NTLM"
	authAuto   = "AUTO"
)

// conn is the part of *ldap.Conn the directory uses.
type conn interface {
	StartTLS(*tls.Config) error
	Bind(username, password string) error
	NTLMBind(domain, username, password string) error
	Search(*ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

type ldapConn struct {
	*ldap.Conn
}

func (c ldapConn) Close() error {
	c.Conn.Close()
	return nil
}

type dialFunc func(rawURL string) (conn, error)

func dialLDAP(rawURL string) (conn, error) {
	c, err := ldap.DialURL(rawURL)
	if err != nil {
		return nil, err
	}
	return ldapConn{c}, nil
}

type LDAPDirectory struct {
	cfg  config.LDAPConfig
	dial dialFunc
}

func NewLDAP(cfg config.LDAPConfig) *LDAPDirectory {
	return &LDAPDirectory{cfg: cfg, dial: dialLDAP}
}

// Authenticate tries every bind form the login could take, then falls back
// to looking up the DN with the service account.
func (d *LDAPDirectory) Authenticate(ctx context.Context, username, password string) bool {
	if strings.TrimSpace(username) == "" || password == "" {
		return false
	}

	for _, candidate := range d.bindCandidates(username) {
		c, err := d.open(candidate, password, d.userAuth(candidate))
		if err != nil {
			continue
		}
		c.Close()
		return true
	}

	dn := d.findUserDN(username)
	if dn == "" {
		return false
	}
	c, err := d.open(dn, password, authSimple)
	if err != nil {
		return false
	}
	c.Close()
	return true
}

// IsAdmin checks membership of the admin group by DN, unique member or
// memberUid, whichever schema the server uses.
func (d *LDAPDirectory) IsAdmin(ctx context.Context, username string) bool {
	if d.cfg.AdminGroupDN == "" {
		return false
	}
	variants := usernameVariants(username)
	if len(variants) == 0 {
		return false
	}

	var dns []string
	for _, v := range variants {
		if dn := d.findUserDN(v); dn != "" {
			dns = append(dns, dn)
		}
	}
	dns = unique(dns)

	var b strings.Builder
	b.WriteString("(|")
	for _, dn := range dns {
		esc := ldap.EscapeFilter(dn)
		b.WriteString("(member=" + esc + ")")
		b.WriteString("(uniqueMember=" + esc + ")")
	}
	for _, v := range variants {
		b.WriteString("(memberUid=" + ldap.EscapeFilter(v) + ")")
	}
	b.WriteString(")")

	c, err := d.serviceConn()
	if err != nil {
		utils.Logger.Warn("LDAP admin lookup failed", zap.Error(err))
		return false
	}
	defer c.Close()

	res, err := c.Search(ldap.NewSearchRequest(
		d.cfg.AdminGroupDN, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		b.String(), []string{"dn"}, nil,
	))
	if err != nil {
		return false
	}
	return len(res.Entries) > 0
}

func (d *LDAPDirectory) bindCandidates(username string) []string {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil
	}
	searchBase := d.cfg.UserSearchBase
	if searchBase == "" {
		searchBase = d.cfg.BaseDN
	}

	candidates := []string{name}
	if d.cfg.UserDNTemplate != "" && !strings.Contains(name, "=") {
		candidates = append(candidates, strings.ReplaceAll(d.cfg.UserDNTemplate, "{username}", name))
	}
	if !strings.Contains(name, "@") && !strings.Contains(name, "=") {
		suffix := d.cfg.UPNSuffix
		if suffix == "" {
			suffix = domainFromBaseDN(d.cfg.BaseDN)
		}
		if suffix != "" {
			candidates = append(candidates, name+"@"+suffix)
		}
	}
	if !strings.Contains(name, "=") {
		candidates = append(candidates, d.cfg.UserAttribute+"="+name+","+searchBase)
	}
	return unique(candidates)
}

func (d *LDAPDirectory) userAuth(bindName string) string {
	if d.cfg.Authentication == authNTLM || (d.cfg.Authentication == authAuto && strings.Contains(bindName, `\`)) {
		return authNTLM
	}
	return authSimple
}

func (d *LDAPDirectory) serviceAuth() string {
	if (d.cfg.Authentication == authNTLM || d.cfg.Authentication == authAuto) && strings.Contains(d.cfg.BindDN, `\`) {
		return authNTLM
	}
	return authSimple
}

// open dials and binds. An empty user means an anonymous connection.
func (d *LDAPDirectory) open(user, password, auth string) (conn, error) {
	c, err := d.dial(d.cfg.Server)
	if err != nil {
		return nil, err
	}
	if d.cfg.StartTLS && !d.cfg.UseSSL {
		if err := c.StartTLS(&tls.Config{ServerName: hostOf(d.cfg.Server)}); err != nil {
			c.Close()
			return nil, err
		}
	}
	if user == "" {
		return c, nil
	}

	if auth == authNTLM {
		domain, name, _ := strings.Cut(user, `\`)
		if name == "" {
			domain, name = "", user
		}
		err = c.NTLMBind(domain, name, password)
	} else {
		err = c.Bind(user, password)
	}
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (d *LDAPDirectory) serviceConn() (conn, error) {
	if d.cfg.BindDN == "" {
		return d.open("", "", authSimple)
	}
	return d.open(d.cfg.BindDN, d.cfg.BindPassword, d.serviceAuth())
}

// findUserDN searches the user search base first, then the base DN.
func (d *LDAPDirectory) findUserDN(username string) string {
	c, err := d.serviceConn()
	if err != nil {
		return ""
	}
	defer c.Close()

	filter := "(" + d.cfg.UserAttribute + "=" + ldap.EscapeFilter(username) + ")"
	for _, base := range unique([]string{d.cfg.UserSearchBase, d.cfg.BaseDN}) {
		res, err := c.Search(ldap.NewSearchRequest(
			base, ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 1, 0, false,
			filter, []string{"dn"}, nil,
		))
		if err != nil || len(res.Entries) == 0 {
			continue
		}
		return res.Entries[0].DN
	}
	return ""
}

// domainFromBaseDN turns dc=corp,dc=example,dc=com into corp.example.com.
// Any non dc component means there is no usable domain.
func domainFromBaseDN(baseDN string) string {
	var parts []string
	for _, p := range strings.Split(baseDN, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(p), "dc=") {
			return ""
		}
		parts = append(parts, p[3:])
	}
	return strings.Join(parts, ".")
}

// usernameVariants returns the login, the part after DOMAIN\ and the part
// before @, without duplicates.
func usernameVariants(username string) []string {
	name := strings.TrimSpace(username)
	if name == "" {
		return nil
	}
	variants := []string{name}
	if _, after, ok := strings.Cut(name, `\`); ok {
		variants = append(variants, after)
	}
	if before, _, ok := strings.Cut(name, "@"); ok {
		variants = append(variants, before)
	}
	return unique(variants)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
