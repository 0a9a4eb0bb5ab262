package contacts

// Resolve returns the display name for a raw identifier, or the
// identifier unchanged when the directory has no match.
//
// Emails are looked up by their normalized form. Phone numbers try the
// full digit string, then the number without a leading country "1",
// then the last ten digits; the first hit wins.
func (d *Directory) Resolve(identifier string) string {
	name, ok := d.Match(identifier)
	if !ok {
		return identifier
	}
	return name
}

// Match is Resolve with an explicit found flag.
func (d *Directory) Match(identifier string) (string, bool) {
	if d.Len() == 0 {
		return "", false
	}
	if IsEmail(identifier) {
		return d.Lookup(NormalizeEmail(identifier))
	}
	for _, k := range lookupOrder(Digits(identifier)) {
		if name, ok := d.Lookup(k); ok {
			return name, true
		}
	}
	return "", false
}
