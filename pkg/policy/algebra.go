package policy

// GrantStorage adds (or merges into) a storage rule. Idempotent: granting
// an already-present URI+access pair is a no-op; granting a new access
// mode for an existing URI merges the access sets.
func (d *Document) GrantStorage(uri string, access []string) {
	if d.Permissions.Storage == nil {
		d.Permissions.Storage = &StoragePermissions{}
	}
	for i, r := range d.Permissions.Storage.Allow {
		if r.URI == uri {
			d.Permissions.Storage.Allow[i].Access = mergeAccess(r.Access, access)
			return
		}
	}
	d.Permissions.Storage.Allow = append(d.Permissions.Storage.Allow, StorageRule{URI: uri, Access: dedupe(access)})
}

// RevokeStorage removes the rule with exactly this URI (both read and
// write access are removed together; there is no partial revocation).
func (d *Document) RevokeStorage(uri string) {
	if d.Permissions.Storage == nil {
		return
	}
	out := d.Permissions.Storage.Allow[:0]
	for _, r := range d.Permissions.Storage.Allow {
		if r.URI != uri {
			out = append(out, r)
		}
	}
	d.Permissions.Storage.Allow = out
}

// GrantNetwork adds a network host rule if not already present.
func (d *Document) GrantNetwork(host string) {
	if d.Permissions.Network == nil {
		d.Permissions.Network = &NetworkPermissions{}
	}
	for _, r := range d.Permissions.Network.Allow {
		if r.Host == host {
			return
		}
	}
	d.Permissions.Network.Allow = append(d.Permissions.Network.Allow, NetworkRule{Host: host})
}

// RevokeNetwork removes the rule with exactly this host.
func (d *Document) RevokeNetwork(host string) {
	if d.Permissions.Network == nil {
		return
	}
	out := d.Permissions.Network.Allow[:0]
	for _, r := range d.Permissions.Network.Allow {
		if r.Host != host {
			out = append(out, r)
		}
	}
	d.Permissions.Network.Allow = out
}

// GrantEnvironment adds an environment-variable allow-list entry if not
// already present.
func (d *Document) GrantEnvironment(key string) {
	if d.Permissions.Environment == nil {
		d.Permissions.Environment = &EnvironmentPermissions{}
	}
	for _, r := range d.Permissions.Environment.Allow {
		if r.Key == key {
			return
		}
	}
	d.Permissions.Environment.Allow = append(d.Permissions.Environment.Allow, EnvironmentRule{Key: key})
}

// RevokeEnvironment removes the rule with exactly this key.
func (d *Document) RevokeEnvironment(key string) {
	if d.Permissions.Environment == nil {
		return
	}
	out := d.Permissions.Environment.Allow[:0]
	for _, r := range d.Permissions.Environment.Allow {
		if r.Key != key {
			out = append(out, r)
		}
	}
	d.Permissions.Environment.Allow = out
}

// Reset empties all three allow-lists.
func (d *Document) Reset() {
	d.Permissions = Permissions{}
}

func mergeAccess(existing, add []string) []string {
	return dedupe(append(append([]string(nil), existing...), add...))
}

func dedupe(in []string) []string {
	set := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !set[v] {
			set[v] = true
			out = append(out, v)
		}
	}
	return out
}
