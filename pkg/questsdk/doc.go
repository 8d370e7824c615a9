/*
Package questsdk is the client SDK for the Questboard API.

# SDKClient vs Gateway

  - SDKClient: unauthenticated calls (register, login, refresh, health).
  - Gateway: every authenticated call. It attaches the stored access token
    and recovers from an expired one by refreshing once and retrying.

	client := questsdk.NewSDKClient("https://api.questboard.example")
	gw := questsdk.NewGateway(client, questsdk.NewMemoryCredentials())

	if _, err := gw.Login(ctx, "alice", "s3cret"); err != nil {
		return err
	}

	quests, err := gw.ListQuests(ctx)

# Credentials

Tokens live in a CredentialStore. MemoryCredentials keeps them for the life
of the process; internal/credstore persists them in SQLite for questctl.
The Gateway reads the store on every call and writes to it only after a
login, a successful refresh, or a failed one (which clears it).

# Token refresh

When a response is a 401, either as the HTTP status or as a 200 whose JSON
body carries "statusCode": 401, the Gateway:

 1. reads the refresh token; if there is none it clears the store and
    returns the original 401,
 2. POSTs it to /v1/auth/refresh without going through itself,
 3. on failure clears the store and returns the original 401,
 4. on success saves the new tokens and reissues the original request
    exactly once, returning whatever that yields.

Refreshes are serialized per Gateway. A call that was rejected with a token
another call has since replaced skips straight to the retry, so N requests
expiring together cost one refresh, not N.

Terminal authentication failures satisfy errors.Is(err, ErrUnauthorized);
callers should send the user back to login. Other HTTP errors come back as
responses and are turned into *APIError by the typed endpoint methods.
*/
package questsdk
